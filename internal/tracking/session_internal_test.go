package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	allowed := []struct {
		from Status
		ev   event
		to   Status
	}{
		{StatusIdle, eventStart, StatusInProgress},
		{StatusCompleted, eventStart, StatusInProgress},
		{StatusFailed, eventStart, StatusInProgress},
		{StatusInProgress, eventAddSet, StatusInProgress},
		{StatusInProgress, eventRemoveSet, StatusInProgress},
		{StatusInProgress, eventSetDate, StatusInProgress},
		{StatusInProgress, eventFinish, StatusFinalizing},
		{StatusFinalizing, eventPersisted, StatusCompleted},
		{StatusFinalizing, eventPersistFailed, StatusFailed},
		{StatusFailed, eventRetry, StatusFinalizing},
		{StatusInProgress, eventCancel, StatusIdle},
		{StatusFinalizing, eventCancel, StatusIdle},
	}
	for _, tc := range allowed {
		to, err := transition(tc.from, tc.ev)
		assert.NoError(t, err, "%s + %s", tc.from, tc.ev)
		assert.Equal(t, tc.to, to, "%s + %s", tc.from, tc.ev)
	}

	rejected := []struct {
		from Status
		ev   event
	}{
		{StatusIdle, eventAddSet},
		{StatusIdle, eventFinish},
		{StatusIdle, eventRetry},
		{StatusInProgress, eventStart},
		{StatusInProgress, eventPersisted},
		{StatusFinalizing, eventAddSet},
		{StatusFinalizing, eventFinish},
		{StatusFinalizing, eventStart},
		{StatusCompleted, eventAddSet},
		{StatusCompleted, eventRetry},
		{StatusCompleted, eventCancel},
		{StatusFailed, eventAddSet},
		{StatusFailed, eventFinish},
	}
	for _, tc := range rejected {
		to, err := transition(tc.from, tc.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s + %s", tc.from, tc.ev)
		assert.Equal(t, tc.from, to)
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "finalizing", StatusFinalizing.String())
	assert.Equal(t, "status(42)", Status(42).String())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusFinalizing.Terminal())
}

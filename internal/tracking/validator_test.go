package tracking_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
)

func TestParseReps(t *testing.T) {
	reps, err := tracking.ParseReps(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, reps)

	for _, raw := range []string{"0", "-1", "abc", "", "1.5", "1e2"} {
		t.Run(raw, func(t *testing.T) {
			reps, err := tracking.ParseReps(raw)
			assert.ErrorIs(t, err, tracking.ErrInvalidReps)
			assert.Zero(t, reps)
			assert.True(t, tracking.IsValidationError(err))
		})
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
	}{
		{raw: "60", expected: 60},
		{raw: " 62.5 ", expected: 62.5},
		{raw: "62,5", expected: 62.5},
		{raw: "0.25", expected: 0.25},
		{raw: "100.", expected: 100},
		{raw: ".5", expected: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			weight, err := tracking.ParseWeight(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, weight)
		})
	}

	for _, raw := range []string{
		"0", "-2.5", "+60", "x", "", ".", "NaN", "Inf", "1,000.5", "1,2,3",
		"0x1p4", "0X10", "1e3", "2E2", "1_000", "1.2.3",
	} {
		t.Run("invalid "+raw, func(t *testing.T) {
			weight, err := tracking.ParseWeight(raw)
			assert.ErrorIs(t, err, tracking.ErrInvalidWeight)
			assert.Zero(t, weight)
		})
	}
}

func TestValidateSet_FieldOfError(t *testing.T) {
	_, err := tracking.ValidateSet("abc", "x")
	var vErr *tracking.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reps", vErr.Field)
	assert.Equal(t, "abc", vErr.Input)

	_, err = tracking.ValidateSet("5", "x")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "weight", vErr.Field)

	set, err := tracking.ValidateSet("5", "100")
	require.NoError(t, err)
	assert.Equal(t, tracking.SetResult{Reps: 5, Weight: 100}, set)
}

func TestNormalizeDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	picked := time.Date(2024, 3, 31, 0, 30, 15, 999, berlin)
	normalized := tracking.NormalizeDate(picked)
	assert.Equal(t, time.Date(2024, 3, 31, 12, 0, 0, 0, berlin), normalized)
	assert.Equal(t, berlin, normalized.Location())
	assert.True(t, tracking.IsNormalized(normalized))
	assert.False(t, tracking.IsNormalized(picked))

	// idempotent
	assert.True(t, normalized.Equal(tracking.NormalizeDate(normalized)))
	assert.Equal(t, normalized, tracking.NormalizeDate(tracking.NormalizeDate(normalized)))

	// the calendar day survives a move to a zone up to 11 hours away
	for _, zone := range []string{"America/Los_Angeles", "Asia/Tokyo", "UTC"} {
		loc, err := time.LoadLocation(zone)
		require.NoError(t, err)
		y, m, d := normalized.In(loc).Date()
		assert.Equal(t, 2024, y, zone)
		assert.Equal(t, time.March, m, zone)
		assert.Equal(t, 31, d, zone)
	}
}

func TestParseDate(t *testing.T) {
	date, err := tracking.ParseDate("2024-01-05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), date)

	_, err = tracking.ParseDate("05/01/2024", time.UTC)
	assert.ErrorIs(t, err, tracking.ErrInvalidDate)
	_, err = tracking.ParseDate("2024-02-30", time.UTC)
	assert.ErrorIs(t, err, tracking.ErrInvalidDate)
}

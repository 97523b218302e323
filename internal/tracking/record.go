package tracking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exercise is the read-only reference used to seed a session.
type Exercise struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e Exercise) valid() bool {
	return strings.TrimSpace(e.ID) != "" && strings.TrimSpace(e.Name) != ""
}

// Record is a persisted workout log entry.
// ID and OwnerID never change after creation. ExerciseName is a snapshot
// of the exercise name at creation time and does not follow renames.
type Record struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	PerformedAt  time.Time `json:"performedAt"`
	Sets         string    `json:"sets"`
}

// NewRecordID returns a fresh identity; it is never reused or regenerated on edit.
func NewRecordID() string {
	return uuid.NewString()
}

// NewRecord encodes the series and stamps a fresh identity.
// performedAt is expected to be normalized already.
func NewRecord(ownerID string, exercise Exercise, performedAt time.Time, series SetSeries) (Record, error) {
	if ownerID == "" {
		return Record{}, ErrNotAuthenticated
	}
	if !exercise.valid() {
		return Record{}, ErrInvalidExercise
	}
	if series.IsEmpty() {
		return Record{}, &ValidationError{Field: "sets", Err: ErrEmptySession}
	}

	sets, err := Encode(series)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:           NewRecordID(),
		OwnerID:      ownerID,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
		PerformedAt:  performedAt,
		Sets:         sets,
	}, nil
}

// Series decodes the stored sets, degrading to an empty series when corrupted.
func (r Record) Series() SetSeries {
	return DecodeOrEmpty(r.ID, r.Sets)
}

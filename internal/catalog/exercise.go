package catalog

import (
	"context"
	"errors"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Exercise is a catalog entry. The catalog is read-only for clients.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	Description string `json:"description"`
}

// Ref is the part of the exercise a session needs.
func (e Exercise) Ref() tracking.Exercise {
	return tracking.Exercise{
		ID:   e.ID,
		Name: e.Name,
	}
}

// Source lists and resolves exercises, from the database or a remote store.
type Source interface {
	List(ctx context.Context) ([]Exercise, error)
	Get(ctx context.Context, id string) (Exercise, error)
}

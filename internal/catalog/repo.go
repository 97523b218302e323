package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
)

var _ Source = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, muscle_group, description
			FROM exercise_type
			ORDER BY muscle_group, name;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Exercise, error) {
		var e Exercise
		err := row.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Description)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	span.SetAttributes(attribute.Int("exercises", len(exercises)))
	return exercises, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var e Exercise
	err = r.db.QueryRow(
		ctx,
		`
			SELECT
				id, name, muscle_group, description
			FROM exercise_type
			WHERE id = $1;`,
		id,
	).Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Exercise{}, ErrExerciseNotFound
		}
		return Exercise{}, fmt.Errorf("exercise [query row]: %w", err)
	}
	return e, nil
}

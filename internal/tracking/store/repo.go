package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

// Repo keeps tracking records in the tracking_record table.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, record tracking.Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", record.ID))
	span.SetAttributes(attribute.String("exercise.id", record.ExerciseID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO tracking_record
				(id, owner_id, exercise_id, exercise_name, performed_at, sets)
				VALUES ($1, $2, $3, $4, $5, $6);`,
		record.ID, record.OwnerID, record.ExerciseID, record.ExerciseName, record.PerformedAt, record.Sets,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return tracking.ErrRecordExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Update replaces the date and sets of a record the owner holds.
// Identity, owner and the exercise snapshot are never written.
func (r *Repo) Update(ctx context.Context, record tracking.Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", record.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE tracking_record SET performed_at = $1, sets = $2 WHERE id = $3 AND owner_id = $4;`,
		record.PerformedAt, record.Sets, record.ID, record.OwnerID,
	)
	if err != nil {
		if pkg.IsInvalidTextError(err) {
			return tracking.ErrRecordNotFound
		}
		return fmt.Errorf("update record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return tracking.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record if the owner holds it. Deleting a missing
// record is not an error.
func (r *Repo) Delete(ctx context.Context, ownerID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM tracking_record WHERE id = $1 AND owner_id = $2;`,
		id, ownerID,
	)
	if err != nil {
		if pkg.IsInvalidTextError(err) {
			return nil
		}
		return fmt.Errorf("delete record: %w", err)
	}
	span.SetAttributes(attribute.Int64("deleted", tag.RowsAffected()))
	return nil
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) (_ []tracking.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id::text, owner_id, exercise_id, exercise_name, performed_at, sets
			FROM tracking_record
			WHERE owner_id = $1
			ORDER BY performed_at DESC, id;`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func rowToRecord(row pgx.CollectableRow) (tracking.Record, error) {
	var rec tracking.Record
	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ExerciseID,
		&rec.ExerciseName,
		&rec.PerformedAt,
		&rec.Sets,
	)
	return rec, err
}

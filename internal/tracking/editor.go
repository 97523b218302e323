package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Editor edits an already persisted record: the decoded series can be
// appended to and the date changed, then the result is committed with
// Repository.Update. Identity, owner and exercise are never touched.
type Editor struct {
	repo    Repository
	ownerID string

	mu       sync.Mutex
	record   Record
	series   SetSeries
	degraded bool
	inFlight bool
}

// OpenEditor loads record for editing. Corrupted set text does not block
// the edit: the editor starts from an empty series and reports Degraded.
// A record of another owner is reported as ErrRecordNotFound, the same way
// the store reports it.
func OpenEditor(repo Repository, ownerID string, record Record) (*Editor, error) {
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}
	if record.OwnerID != ownerID {
		return nil, fmt.Errorf("edit record [%s]: %w", record.ID, ErrRecordNotFound)
	}

	series, err := Decode(record.Sets)
	degraded := false
	if err != nil {
		log.Warnf("edit record [%s]: starting from an empty series: %s", record.ID, err)
		series = SetSeries{}
		degraded = true
	}

	return &Editor{
		repo:     repo,
		ownerID:  ownerID,
		record:   record,
		series:   series,
		degraded: degraded,
	}, nil
}

// Degraded reports whether the stored sets could not be decoded.
func (e *Editor) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded
}

func (e *Editor) Sets() SetSeries {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.series.Clone()
}

func (e *Editor) Record() Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record
}

func (e *Editor) AddSet(rawReps, rawWeight string) error {
	set, err := ValidateSet(rawReps, rawWeight)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.series = append(e.series, set)
	return nil
}

// SetDate moves the record to a newly picked calendar date.
func (e *Editor) SetDate(date time.Time) error {
	if date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.record.PerformedAt = NormalizeDate(date)
	return nil
}

// Commit writes the edited series and date back to the store. Only one
// commit may be in flight; local edits are kept when the store fails.
func (e *Editor) Commit(ctx context.Context) (Record, error) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return Record{}, ErrWriteInFlight
	}
	if e.series.IsEmpty() {
		e.mu.Unlock()
		return Record{}, &ValidationError{Field: "sets", Err: ErrEmptySession}
	}

	sets, err := Encode(e.series)
	if err != nil {
		e.mu.Unlock()
		return Record{}, err
	}
	updated := e.record
	updated.Sets = sets
	e.inFlight = true
	e.mu.Unlock()

	err = e.repo.Update(ctx, updated)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if err != nil {
		return Record{}, err
	}
	e.record = updated
	e.degraded = false
	return updated, nil
}

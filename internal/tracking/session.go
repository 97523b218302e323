package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Status of a live workout session.
type Status int

const (
	StatusIdle Status = iota
	StatusInProgress
	StatusFinalizing
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInProgress:
		return "in-progress"
	case StatusFinalizing:
		return "finalizing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type event string

const (
	eventStart         event = "start"
	eventAddSet        event = "add-set"
	eventRemoveSet     event = "remove-set"
	eventSetDate       event = "set-date"
	eventFinish        event = "finish"
	eventPersisted     event = "persisted"
	eventPersistFailed event = "persist-failed"
	eventRetry         event = "retry"
	eventCancel        event = "cancel"
)

var transitions = map[Status]map[event]Status{
	StatusIdle: {
		eventStart:  StatusInProgress,
		eventCancel: StatusIdle,
	},
	StatusInProgress: {
		eventAddSet:    StatusInProgress,
		eventRemoveSet: StatusInProgress,
		eventSetDate:   StatusInProgress,
		eventFinish:    StatusFinalizing,
		eventCancel:    StatusIdle,
	},
	StatusFinalizing: {
		eventPersisted:     StatusCompleted,
		eventPersistFailed: StatusFailed,
		eventCancel:        StatusIdle,
	},
	StatusCompleted: {
		eventStart: StatusInProgress,
	},
	StatusFailed: {
		eventStart: StatusInProgress,
		eventRetry: StatusFinalizing,
	},
}

func transition(from Status, ev event) (Status, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// Snapshot is a read-only view of the recorder, safe to hand to a UI.
type Snapshot struct {
	Status      Status
	Exercise    Exercise
	Sets        SetSeries
	PerformedAt time.Time
	// Record is the record being or having been persisted, set from Finish on.
	Record *Record
	// Err is the store error that moved the session to StatusFailed.
	Err error
}

// Recorder drives a single live workout session.
// Mutating calls must come from one logical caller. The lock is released
// while the store call of Finish or Retry is in flight, so Status and
// Snapshot can be polled to show a pending state.
type Recorder struct {
	repo    Repository
	ownerID string
	now     func() time.Time

	mu          sync.Mutex
	status      Status
	exercise    Exercise
	series      SetSeries
	performedAt time.Time
	pending     *Record
	lastErr     error
	generation  uint64
	cancelCall  context.CancelFunc
}

func NewRecorder(repo Repository, ownerID string) *Recorder {
	return &Recorder{
		repo:    repo,
		ownerID: ownerID,
		now:     time.Now,
		status:  StatusIdle,
	}
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Status:      r.status,
		Exercise:    r.exercise,
		Sets:        r.series.Clone(),
		PerformedAt: r.performedAt,
		Err:         r.lastErr,
	}
	if r.pending != nil {
		rec := *r.pending
		snap.Record = &rec
	}
	return snap
}

// Start opens a session for exercise, discarding any finished one.
func (r *Recorder) Start(exercise Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ownerID == "" {
		return ErrNotAuthenticated
	}
	if !exercise.valid() {
		return ErrInvalidExercise
	}
	next, err := transition(r.status, eventStart)
	if err != nil {
		return err
	}

	r.status = next
	r.exercise = exercise
	r.series = SetSeries{}
	r.performedAt = time.Time{}
	r.pending = nil
	r.lastErr = nil
	log.Debugf("session started: [%s] %s", exercise.ID, exercise.Name)
	return nil
}

// AddSet validates the raw input and appends a set. On a validation
// failure the series is left untouched and the session stays in progress.
func (r *Recorder) AddSet(rawReps, rawWeight string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := transition(r.status, eventAddSet); err != nil {
		return err
	}
	set, err := ValidateSet(rawReps, rawWeight)
	if err != nil {
		return err
	}
	r.series = append(r.series, set)
	return nil
}

// RemoveLastSet pops the most recent set; it is a no-op on an empty series.
func (r *Recorder) RemoveLastSet() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := transition(r.status, eventRemoveSet); err != nil {
		return err
	}
	if len(r.series) > 0 {
		r.series = r.series[:len(r.series)-1]
	}
	return nil
}

// SetDate backdates the session to a calendar date, for manual entry.
// Without it the session is dated on the day Finish is called.
func (r *Recorder) SetDate(date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := transition(r.status, eventSetDate); err != nil {
		return err
	}
	if date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	r.performedAt = NormalizeDate(date)
	return nil
}

// Finish builds the record and creates it in the store, exactly once.
// An empty series fails with ErrEmptySession and the session stays in progress.
// A store error moves the session to StatusFailed and is returned unchanged.
func (r *Recorder) Finish(ctx context.Context) (Record, error) {
	r.mu.Lock()

	if r.ownerID == "" {
		r.mu.Unlock()
		return Record{}, ErrNotAuthenticated
	}
	if r.status == StatusInProgress && r.series.IsEmpty() {
		r.mu.Unlock()
		return Record{}, &ValidationError{Field: "sets", Err: ErrEmptySession}
	}
	next, err := transition(r.status, eventFinish)
	if err != nil {
		r.mu.Unlock()
		return Record{}, err
	}

	performedAt := r.performedAt
	if performedAt.IsZero() {
		performedAt = NormalizeDate(r.now())
	}
	record, err := NewRecord(r.ownerID, r.exercise, performedAt, r.series)
	if err != nil {
		r.mu.Unlock()
		return Record{}, err
	}

	r.status = next
	r.performedAt = performedAt
	r.pending = &record
	return r.persist(ctx, record, false)
}

// Retry re-attempts a failed Finish with the same identity. It first checks
// whether the failed create landed after all, and only creates again if not.
func (r *Recorder) Retry(ctx context.Context) (Record, error) {
	r.mu.Lock()

	next, err := transition(r.status, eventRetry)
	if err != nil {
		r.mu.Unlock()
		return Record{}, err
	}
	record := *r.pending
	r.status = next
	r.lastErr = nil
	return r.persist(ctx, record, true)
}

// Cancel discards the session without persisting. During Finalizing the
// in-flight request is cancelled and its outcome ignored; the create may
// still have reached the store.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := transition(r.status, eventCancel)
	if err != nil {
		return err
	}
	if r.cancelCall != nil {
		log.Warnf("session cancelled while record [%s] was being persisted", r.pending.ID)
		r.cancelCall()
		r.cancelCall = nil
	}

	r.generation++
	r.status = next
	r.exercise = Exercise{}
	r.series = nil
	r.performedAt = time.Time{}
	r.pending = nil
	r.lastErr = nil
	return nil
}

// persist is called with r.mu held; it releases the lock for the store call.
func (r *Recorder) persist(ctx context.Context, record Record, checkLanded bool) (Record, error) {
	r.generation++
	gen := r.generation
	callCtx, cancel := context.WithCancel(ctx)
	r.cancelCall = cancel
	r.mu.Unlock()

	err := r.store(callCtx, record, checkLanded)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != gen {
		return Record{}, ErrSessionCancelled
	}
	r.cancelCall = nil

	if err != nil {
		r.status, _ = transition(r.status, eventPersistFailed)
		r.lastErr = err
		log.Errorf("persist record [%s] for [%s]: %s", record.ID, record.ExerciseID, err)
		return Record{}, err
	}

	r.status, _ = transition(r.status, eventPersisted)
	log.Debugf("record [%s] persisted with %d sets", record.ID, r.series.Len())
	return record, nil
}

func (r *Recorder) store(ctx context.Context, record Record, checkLanded bool) error {
	if checkLanded {
		existing, err := r.repo.ListByOwner(ctx, record.OwnerID)
		if err != nil {
			return err
		}
		for _, rec := range existing {
			if rec.ID == record.ID {
				log.Infof("record [%s] already landed, skipping create", record.ID)
				return nil
			}
		}
	}
	return r.repo.Create(ctx, record)
}

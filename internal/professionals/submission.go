package professionals

import (
	"context"
	stderrors "errors"
	"sync"
	"time"
)

type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
	StateSucceeded  SubmissionState = "succeeded"
	StateFailed     SubmissionState = "failed"
)

func (s SubmissionState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Submission kinds used as metric attributes.
const (
	KindCreate = "create"
	KindBulk   = "bulk"
	KindUpload = "upload"
)

var (
	ErrSubmissionInFlight   = stderrors.New("submission already in flight")
	ErrSubmissionFinished   = stderrors.New("submission already finished")
	ErrSubmissionNotStarted = stderrors.New("submission not started")
)

// SubmissionObserver is told the outcome of every finished submission.
type SubmissionObserver interface {
	RecordSubmission(ctx context.Context, kind, outcome string, duration time.Duration)
}

// Submission tracks one single-shot operation through
// idle -> submitting -> succeeded | failed. There is no retry state; a new
// attempt needs a new Submission.
type Submission struct {
	kind     string
	observer SubmissionObserver
	now      func() time.Time

	mu      sync.Mutex
	state   SubmissionState
	err     error
	started time.Time
	elapsed time.Duration
}

// NewSubmission returns an idle submission. observer may be nil.
func NewSubmission(kind string, observer SubmissionObserver) *Submission {
	return &Submission{
		kind:     kind,
		observer: observer,
		now:      time.Now,
		state:    StateIdle,
	}
}

func (s *Submission) Kind() string {
	return s.kind
}

func (s *Submission) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the failure that ended the submission, nil otherwise.
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Elapsed is the time between Begin and Finish, zero until finished.
func (s *Submission) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Submission) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateSucceeded, StateFailed:
		return ErrSubmissionFinished
	}
	s.state = StateSubmitting
	s.started = s.now()
	return nil
}

// Finish moves a running submission to succeeded when err is nil and to
// failed otherwise.
func (s *Submission) Finish(ctx context.Context, err error) error {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return ErrSubmissionNotStarted
	case StateSucceeded, StateFailed:
		s.mu.Unlock()
		return ErrSubmissionFinished
	}

	s.elapsed = s.now().Sub(s.started)
	s.err = err
	s.state = StateSucceeded
	if err != nil {
		s.state = StateFailed
	}
	state, elapsed := s.state, s.elapsed
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.RecordSubmission(ctx, s.kind, string(state), elapsed)
	}
	return nil
}

// Run begins the submission, calls fn once and records its outcome. The
// error is fn's, or a state error when the submission was not idle.
func (s *Submission) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := s.Begin(); err != nil {
		return err
	}
	err := fn(ctx)
	_ = s.Finish(ctx, err)
	return err
}

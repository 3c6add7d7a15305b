package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-chi-calculator/internal/engine"
)

const defaultMaxAttempts = 3

// Service runs engine transitions against stored sessions. Each Apply is a
// load, transition, save cycle retried on version conflicts, so concurrent
// requests against one session are serialised without holding locks.
type Service struct {
	store       Store
	maxAttempts int
	now         func() time.Time
}

// NewService returns a Service over store. maxAttempts <= 0 selects the default of 3.
func NewService(store Store, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Service{
		store:       store,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a freshly reset calculator.
func (s *Service) Create(ctx context.Context) (Session, error) {
	now := s.now()
	sess := Session{
		ID:        NewID(),
		State:     engine.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	sess.Version = 1
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// Apply validates events, then folds them over the session state in order.
// Nothing is applied when any event is invalid, and an empty batch is a read.
func (s *Service) Apply(ctx context.Context, id string, events []engine.Event) (Session, error) {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return Session{}, fmt.Errorf("event %d: %w", i, err)
		}
	}
	if len(events) == 0 {
		return s.store.Get(ctx, id)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Session{}, err
		}

		sess, err := s.store.Get(ctx, id)
		if err != nil {
			return Session{}, err
		}

		sess.State = engine.Run(sess.State, events...)
		sess.UpdatedAt = s.now()

		updated, err := s.store.Update(ctx, sess)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return Session{}, err
		}
		lastErr = err
	}
	return Session{}, fmt.Errorf("after %d attempts: %w", s.maxAttempts, lastErr)
}

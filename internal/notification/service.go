package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backoff configuration
const (
	minBackoffDuration = 5 * time.Minute
	maxEscalationLevel = 5

	// DefaultSendTimeout bounds one delivery attempt.
	DefaultSendTimeout = 30 * time.Second
)

// Service fans decision events out to the configured notifiers
type Service struct {
	notifiers   []Notifier
	sendTimeout time.Duration
	logger      zerolog.Logger

	mu       sync.Mutex
	statuses map[string]*Status
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewService creates a new notification service
func NewService(notifiers []Notifier, logger zerolog.Logger) *Service {
	return &Service{
		notifiers:   notifiers,
		sendTimeout: DefaultSendTimeout,
		logger:      logger.With().Str("component", "notification").Logger(),
		statuses:    make(map[string]*Status),
		now:         time.Now,
	}
}

// Notifiers returns the configured notifiers.
func (s *Service) Notifiers() []Notifier {
	return s.notifiers
}

// NotifyDecision sends an event to every notifier that is not backing off.
// Delivery happens in the background and never outlives sendTimeout; the
// caller's cancellation does not abort it.
func (s *Service) NotifyDecision(ctx context.Context, event DecisionEvent) {
	if len(s.notifiers) == 0 {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	s.logger.Debug().
		Str("eventId", event.EventID).
		Int("requestId", event.RequestID).
		Int("count", len(s.notifiers)).
		Msg("Dispatching decision notification")

	detached := context.WithoutCancel(ctx)
	for _, n := range s.notifiers {
		if s.isDisabled(n.Name()) {
			s.logger.Debug().Str("name", n.Name()).Msg("Notifier backing off; skipped")
			continue
		}
		s.wg.Add(1)
		go s.sendNotification(detached, n, event)
	}
}

func (s *Service) sendNotification(ctx context.Context, n Notifier, event DecisionEvent) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := n.OnDecision(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("name", n.Name()).
			Str("type", string(n.Type())).
			Str("eventId", event.EventID).
			Msg("Notification failed")
		s.recordFailure(n.Name())
		return
	}

	s.logger.Debug().
		Str("name", n.Name()).
		Str("eventId", event.EventID).
		Msg("Notification sent successfully")
	s.clearFailure(n.Name())
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Test sends a test message through every notifier, ignoring backoff.
func (s *Service) Test(ctx context.Context) []TestResult {
	results := make([]TestResult, len(s.notifiers))
	var wg sync.WaitGroup
	for i, n := range s.notifiers {
		wg.Add(1)
		go func(i int, n Notifier) {
			defer wg.Done()
			res := TestResult{Name: n.Name(), Type: n.Type(), Success: true, Message: "Notification test successful"}
			if err := n.Test(ctx); err != nil {
				res.Success = false
				res.Message = err.Error()
			}
			results[i] = res
		}(i, n)
	}
	wg.Wait()
	return results
}

// Statuses returns the notifiers currently backing off.
func (s *Service) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Status
	for _, n := range s.notifiers {
		if st, ok := s.statuses[n.Name()]; ok {
			out = append(out, *st)
		}
	}
	return out
}

func (s *Service) isDisabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[name]
	return ok && status.DisabledTill.After(s.now())
}

func (s *Service) recordFailure(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[name]
	if !ok {
		status = &Status{Name: name}
		s.statuses[name] = status
	}

	status.EscalationLevel++
	if status.EscalationLevel > maxEscalationLevel {
		status.EscalationLevel = maxEscalationLevel
	}

	backoff := minBackoffDuration * time.Duration(1<<(status.EscalationLevel-1))
	status.DisabledTill = s.now().Add(backoff)
}

func (s *Service) clearFailure(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, name)
}

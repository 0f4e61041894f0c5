package induction

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/mailstepcz/induction"

// Session carries the state shared by the phases of one run: settings, logging, metrics and
// the solver call counter. The loop is sequential, so a session is not safe for concurrent use.
type Session struct {
	ID      uuid.UUID
	Config  Config
	Logger  *zap.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
	Stats   Stats

	breaker  *gobreaker.CircuitBreaker
	acquirer *Acquirer
}

// NewSession returns a session with the given settings. A nil logger discards all output.
// The grounder and the solver must be executable, otherwise ErrConfiguration is returned.
func NewSession(cfg Config, logger *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var err error
	if cfg.Gringo, err = exec.LookPath(cfg.Gringo); err != nil {
		return nil, fmt.Errorf("%w: grounder: %w", ErrConfiguration, err)
	}
	if cfg.Clasp, err = exec.LookPath(cfg.Clasp); err != nil {
		return nil, fmt.Errorf("%w: solver: %w", ErrConfiguration, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	acquirer, err := NewAcquirer(1024)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	logger = logger.With(zap.String("session", id.String()))
	return &Session{
		ID:      id,
		Config:  cfg,
		Logger:  logger,
		Metrics: NewMetrics(),
		Tracer:  otel.Tracer(tracerName),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "solver",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		}),
		acquirer: acquirer,
	}, nil
}

// Calls returns the number of solver round trips so far.
func (s *Session) Calls() int { return s.Stats.Calls }

// Timed starts timing a phase. The returned function stops it and adds the time to d.
func (s *Session) Timed(phase string, d *time.Duration) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		*d += elapsed
		s.Metrics.RecordPhase(phase, elapsed)
	}
}

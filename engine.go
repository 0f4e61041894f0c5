package induction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Engine runs the learning loop: abduction, then kernel and generalisation, then induction,
// for as many iterations as configured.
type Engine struct {
	problem *Problem
	session *Session
}

// NewEngine returns an engine for the problem.
func NewEngine(p *Problem, s *Session) *Engine {
	if p == nil || s == nil {
		panic("nil problem or session")
	}
	return &Engine{problem: p, session: s}
}

// Run runs the loop and returns the answers found. With a kill timeout the whole run is
// cancelled when it expires and the answers found so far are returned with ErrInterrupted.
func (e *Engine) Run(ctx context.Context) (*Answers, error) {
	s := e.session
	if s.Config.Kill > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.Kill)
		defer cancel()
	}
	ctx, span := s.Tracer.Start(ctx, "run")
	defer span.End()
	start := time.Now()
	defer func() { s.Stats.Wall = time.Since(start) }()

	answers := NewAnswers()
	err := e.loop(ctx, answers)
	span.SetAttributes(
		attribute.Int("answers", answers.Len()),
		attribute.Int("calls", s.Stats.Calls),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ErrInterrupted) {
			s.Logger.Info("solving interrupted",
				zap.Duration("kill", s.Config.Kill),
				zap.Int("answers", answers.Len()))
		}
		return answers, err
	}
	return answers, nil
}

func (e *Engine) loop(ctx context.Context, answers *Answers) error {
	var (
		s           = e.session
		dialler     = NewDialler(s)
		values      Values
		refinements []string
	)
	for iter := 1; iter <= max(1, s.Config.Iterations); iter++ {
		logger := s.Logger.With(zap.Int("iteration", iter))
		// abductive costs count abduced atoms and inductive costs count clause literals,
		// so the bound carried between rounds only seeds induction
		done := s.Timed("abduction", &s.Stats.Abduction)
		res, err := dialler.Dial(ctx, &abduction{problem: e.problem, refinements: refinements}, iter, nil)
		done()
		if err != nil {
			return err
		}
		if len(res.Answers) == 0 {
			logger.Info("no abductive answer")
			return nil
		}
		for _, output := range res.Answers {
			g := NewGrounding(e.problem, output, logger)
			logger.Debug("abduction",
				zap.Stringers("delta", g.Delta()),
				zap.Int("covered", len(g.Covered())),
				zap.Int("uncovered", len(g.Uncovered())))
			refinements = append(refinements, g.BadSolution())
			if values, err = g.Solve(ctx, s, values, answers); err != nil {
				return err
			}
			if s.Config.Terminate && answers.Len() > 0 {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrInterrupted, err)
			}
		}
	}
	return nil
}

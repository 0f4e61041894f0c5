package induction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Solver exit statuses.
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
	exitOptimum       = 30
)

var suppressedWarnings = []string{
	"bad_solution/0 is never defined",
	"number_abduced/2 is never defined",
}

// Payload is a program that can be sent to the solver.
type Payload interface {
	Serialize(iter int, w io.Writer) error
}

// Result is the outcome of a solver round trip: the best bound and the answer sets reaching it.
type Result struct {
	Values  Values
	Answers [][]Atom
	// TimedOut is set when the solver was stopped by the budget.
	TimedOut bool
}

// Dialler runs the grounder and the solver over a program.
type Dialler struct {
	session *Session
}

// NewDialler returns a dialler for the session.
func NewDialler(s *Session) *Dialler {
	return &Dialler{session: s}
}

// Dial grounds and solves the payload. The bound, if any, seeds the solver's cost ceiling.
// Launch and I/O failures yield an empty result unless the strict setting is on.
// A fatal grounder diagnostic is returned as ErrDiagnostic.
func (d *Dialler) Dial(ctx context.Context, payload Payload, iter int, bound Values) (*Result, error) {
	s := d.session
	s.Stats.Calls++
	ctx, span := s.Tracer.Start(ctx, "dial", trace.WithAttributes(
		attribute.Int("iteration", iter),
		attribute.Int("call", s.Stats.Calls),
	))
	defer span.End()
	start := time.Now()
	logger := s.Logger.With(zap.Int("call", s.Stats.Calls), zap.Int("iteration", iter))

	dir, err := os.MkdirTemp(s.Config.TempDir, "induction-"+s.ID.String()+"-")
	if err != nil {
		return d.degrade(span, start, fmt.Errorf("%w: %w", ErrLaunch, err))
	}
	if s.Config.Debug {
		logger.Debug("keeping solver files", zap.String("dir", dir))
	} else {
		defer os.RemoveAll(dir)
	}
	var (
		source = filepath.Join(dir, "source.lp")
		middle = filepath.Join(dir, "middle.lp")
		target = filepath.Join(dir, "target.txt")
		diag   = filepath.Join(dir, "errors.txt")
	)

	if err := writePayload(source, payload, iter); err != nil {
		return d.degrade(span, start, fmt.Errorf("%w: %w", ErrLaunch, err))
	}
	if err := d.ground(ctx, logger, source, middle, diag); err != nil {
		switch {
		case ctx.Err() != nil:
			return d.interrupted(span, start, &Result{}, ctx.Err())
		case errors.Is(err, ErrDiagnostic):
			s.Metrics.RecordCall("diagnostic", time.Since(start))
			span.SetStatus(codes.Error, err.Error())
			logger.Error("grounder failed", zap.Error(err))
			return nil, err
		}
		return d.degrade(span, start, err)
	}

	timedOut, err := d.solve(ctx, logger, middle, target, bound)
	if err != nil {
		if ctx.Err() != nil {
			return d.interrupted(span, start, &Result{}, ctx.Err())
		}
		return d.degrade(span, start, err)
	}

	f, err := os.Open(target)
	if err != nil {
		return d.degrade(span, start, fmt.Errorf("%w: %w", ErrLaunch, err))
	}
	defer f.Close()
	values, answers, err := s.acquirer.Acquire(f)
	if err != nil {
		if !errors.Is(err, ErrTruncated) || (!timedOut && len(answers) == 0) {
			return d.degrade(span, start, err)
		}
		logger.Warn("solver output cut short",
			zap.Error(err),
			zap.Bool("timed_out", timedOut),
			zap.Int("answers", len(answers)))
	}
	result := &Result{Values: values, Answers: answers, TimedOut: timedOut}
	span.SetAttributes(attribute.Int("answers", len(answers)))
	if ctx.Err() != nil {
		return d.interrupted(span, start, result, ctx.Err())
	}
	status := "ok"
	if timedOut {
		status = "timeout"
		logger.Warn("solver stopped",
			zap.Error(ErrTimeout),
			zap.Duration("budget", s.Config.Budget),
			zap.Int("answers", len(answers)))
	}
	s.Metrics.RecordCall(status, time.Since(start))
	logger.Debug("solver call done",
		zap.Stringer("values", values),
		zap.Int("answers", len(answers)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (d *Dialler) degrade(span trace.Span, start time.Time, err error) (*Result, error) {
	s := d.session
	s.Metrics.RecordCall("failed", time.Since(start))
	span.RecordError(err)
	if s.Config.Strict {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	s.Logger.Warn("solver call failed", zap.Error(err))
	return &Result{}, nil
}

func (d *Dialler) interrupted(span trace.Span, start time.Time, r *Result, cause error) (*Result, error) {
	d.session.Metrics.RecordCall("interrupted", time.Since(start))
	span.SetStatus(codes.Error, "interrupted")
	return r, fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

func writePayload(path string, payload Payload, iter int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := payload.Serialize(iter, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ground runs the grounder with its output going to the middle file.
// Its diagnostics are classified before anything else happens.
func (d *Dialler) ground(ctx context.Context, logger *zap.Logger, source, middle, diag string) error {
	out, err := os.Create(middle)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	defer out.Close()
	errs, err := os.Create(diag)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	defer errs.Close()

	cmd := exec.CommandContext(ctx, d.session.Config.Gringo, source)
	cmd.Stdout = out
	cmd.Stderr = errs
	logger.Debug("running grounder", zap.String("cmd", cmd.String()))
	runErr := cmd.Run()

	if _, err := errs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if err := d.classify(logger, errs); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%w: grounder: %w", ErrLaunch, runErr)
	}
	return nil
}

type diagnosticKind int

const (
	diagnosticNone diagnosticKind = iota
	diagnosticFatal
	diagnosticWarning
	diagnosticSuppressed
)

// classify sorts grounder diagnostics into fatal errors, warnings and everything else.
// An error message runs until the next warning, indented lines continue a warning.
func (d *Dialler) classify(logger *zap.Logger, r io.Reader) error {
	var (
		s       = d.session
		fatal   []string
		current = diagnosticNone
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ERROR: "), strings.HasPrefix(line, "*** ERROR: "), strings.Contains(line, ": error: "):
			current = diagnosticFatal
			fatal = append(fatal, line)
			s.Metrics.RecordDiagnostic("error")
		case strings.HasPrefix(line, "% warning: "), strings.Contains(line, ": warning: "), strings.Contains(line, ": info: "):
			current = diagnosticWarning
			if isSuppressed(line) {
				current = diagnosticSuppressed
				s.Metrics.RecordDiagnostic("suppressed")
				continue
			}
			s.Metrics.RecordDiagnostic("warning")
			if !s.Config.Mute {
				logger.Warn("grounder warning", zap.String("message", line))
			}
		case current == diagnosticFatal:
			fatal = append(fatal, line)
		case strings.TrimSpace(line) == "":
		case (current == diagnosticWarning || current == diagnosticSuppressed) && (line[0] == ' ' || line[0] == '\t'):
			if current == diagnosticWarning && !s.Config.Mute {
				logger.Warn("grounder warning", zap.String("message", line))
			}
		default:
			current = diagnosticNone
			s.Metrics.RecordDiagnostic("other")
			logger.Info("grounder", zap.String("message", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if len(fatal) > 0 {
		return fmt.Errorf("%w: %s", ErrDiagnostic, strings.Join(fatal, "\n"))
	}
	return nil
}

func isSuppressed(line string) bool {
	for _, w := range suppressedWarnings {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// solve runs the solver over the middle file. One relay feeds the middle file into the solver,
// another one copies the solver's output into the target file.
// With a budget the solver is terminated when it runs out, then killed after the grace period.
func (d *Dialler) solve(ctx context.Context, logger *zap.Logger, middle, target string, bound Values) (bool, error) {
	s := d.session
	in, err := os.Open(middle)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	out, err := os.Create(target)
	if err != nil {
		in.Close()
		return false, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		in.Close()
		out.Close()
		return false, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		in.Close()
		out.Close()
		stdinR.Close()
		stdinW.Close()
		return false, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	args := []string{"--verbose=0", "--opt-mode=optN"}
	if len(bound) > 0 {
		args = append(args, "--opt-bound="+bound.Bound())
	}
	cmd := exec.Command(s.Config.Clasp, args...)
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	setupProcessGroup(cmd)
	logger.Debug("running solver", zap.String("cmd", cmd.String()))

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, cmd.Start()
	})
	stdinR.Close()
	stdoutW.Close()
	if err != nil {
		in.Close()
		out.Close()
		stdinW.Close()
		stdoutR.Close()
		return false, fmt.Errorf("%w: solver: %w", ErrLaunch, err)
	}

	var relays errgroup.Group
	relays.Go(func() error {
		defer in.Close()
		defer stdinW.Close()
		if _, err := io.Copy(stdinW, in); err != nil && !isClosedPipe(err) {
			return fmt.Errorf("feed solver: %w", err)
		}
		return nil
	})
	relays.Go(func() error {
		defer out.Close()
		defer stdoutR.Close()
		if _, err := io.Copy(out, stdoutR); err != nil && !isClosedPipe(err) {
			return fmt.Errorf("capture solver output: %w", err)
		}
		return nil
	})

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var budget <-chan time.Time
	if s.Config.Budget > 0 {
		timer := time.NewTimer(s.Config.Budget)
		defer timer.Stop()
		budget = timer.C
	}
	var (
		waitErr  error
		timedOut bool
	)
	select {
	case waitErr = <-waitDone:
	case <-budget:
		timedOut = true
		waitErr = d.stop(logger, cmd, waitDone)
	case <-ctx.Done():
		waitErr = d.stop(logger, cmd, waitDone)
	}

	relaysDone := make(chan error, 1)
	go func() { relaysDone <- relays.Wait() }()
	grace := time.NewTimer(s.Config.Grace)
	defer grace.Stop()
	select {
	case err := <-relaysDone:
		if err != nil {
			logger.Warn("relay failed", zap.Error(err))
		}
	case <-grace.C:
		logger.Warn("relays did not finish in time, closing them")
		stdinW.Close()
		stdoutR.Close()
		<-relaysDone
	}

	d.logExit(logger, waitErr, timedOut)
	return timedOut, nil
}

// stop terminates the solver and kills it if it outlives the grace period.
func (d *Dialler) stop(logger *zap.Logger, cmd *exec.Cmd, waitDone <-chan error) error {
	if err := terminateProcessGroup(cmd); err != nil {
		logger.Warn("cannot terminate solver", zap.Error(err))
	}
	grace := time.NewTimer(d.session.Config.Grace)
	defer grace.Stop()
	select {
	case err := <-waitDone:
		return err
	case <-grace.C:
	}
	if err := killProcessGroup(cmd); err != nil {
		logger.Warn("cannot kill solver", zap.Error(err))
	}
	return <-waitDone
}

func (d *Dialler) logExit(logger *zap.Logger, err error, timedOut bool) {
	if err == nil {
		logger.Debug("solver exited", zap.Int("status", 0))
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		logger.Warn("solver failed", zap.Error(err))
		return
	}
	switch code := exitErr.ExitCode(); code {
	case exitOptimum:
		logger.Debug("solver found the optimum", zap.Int("status", code))
	case exitSatisfiable, exitUnsatisfiable:
		logger.Debug("solver exited", zap.Int("status", code))
	default:
		if timedOut {
			logger.Debug("solver stopped", zap.Int("status", code))
			return
		}
		logger.Warn("solver exited with unexpected status", zap.Int("status", code))
	}
}

func isClosedPipe(err error) bool {
	return errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE)
}

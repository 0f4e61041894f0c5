package induction

import "errors"

var (
	// ErrIllFormed signifies a parse error.
	ErrIllFormed = errors.New("parse error")
	// ErrConfiguration signifies unusable solver binaries or settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrLaunch signifies a failure to start or feed the grounder or the solver.
	ErrLaunch = errors.New("process launch error")
	// ErrTimeout signifies that the solver exceeded its budget.
	ErrTimeout = errors.New("solver budget exceeded")
	// ErrTruncated signifies solver output that ends in the middle of a model.
	ErrTruncated = errors.New("solver output cut short")
	// ErrDiagnostic signifies a fatal error reported by the grounder.
	ErrDiagnostic = errors.New("solver diagnostic")
	// ErrInterrupted signifies that the whole run was cancelled.
	ErrInterrupted = errors.New("interrupted")
)

package runner

import (
	"errors"
	"strings"
)

var (
	// ErrSuperseded is returned by a run that was cancelled by a newer run or a reset.
	ErrSuperseded = errors.New("run superseded")

	// ErrInvalidWorkflow is matched by a *ValidationError.
	ErrInvalidWorkflow = errors.New("workflow failed engine validation")

	// ErrEngineUnhealthy is returned when the engine's status probe reports anything but ok.
	ErrEngineUnhealthy = errors.New("engine unhealthy")
)

// ValidationError carries the problems the engine reported during preflight.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidWorkflow.Error() + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidWorkflow
}

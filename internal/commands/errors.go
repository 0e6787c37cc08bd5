package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors surfaced by the handler wrapper. Hosts can
// match on these instead of error strings.
const (
	codeValidationFailed = "COMMAND_VALIDATION_FAILED"
	codeContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	codeContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	codeContextError     = "COMMAND_CONTEXT_ERROR"
	codeExecutionFailed  = "COMMAND_EXECUTION_FAILED"
)

// alreadyTagged reports whether a lower layer wrapped err; message handlers
// tag domain failures themselves and those tags must survive the trip up.
func alreadyTagged(err error) bool {
	return goerrors.IsWrapped(err)
}

func wrapValidationError(err error) error {
	if err == nil || alreadyTagged(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidationFailed)
}

func wrapExecuteError(err error) error {
	if err == nil || alreadyTagged(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecutionFailed)
}

func wrapContextError(err error) error {
	if err == nil || alreadyTagged(err) {
		return err
	}

	msg, code := "command context error", codeContextError
	switch {
	case errors.Is(err, context.Canceled):
		msg, code = "command execution cancelled", codeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		msg, code = "command execution deadline exceeded", codeContextTimeout
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

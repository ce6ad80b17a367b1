package agent

import (
	"errors"
	"fmt"
)

// ErrIterationBudget is returned when the conversation loop does not
// converge within the iteration cap. Fails closed: no partial decision.
var ErrIterationBudget = errors.New("dispatcher exceeded maximum iterations")

// InputValidationError indicates a required ticket field is absent or
// invalid. Fatal for the call; not retried.
type InputValidationError struct {
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid ticket input on field '%s': %s", e.Field, e.Message)
}

// ProtocolViolationError indicates the model reported a stop reason
// outside the known set. Points at a change or bug in the model
// integration, so it is fatal and never retried.
type ProtocolViolationError struct {
	StopReason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("unexpected model stop reason: %q", e.StopReason)
}

// OutputFormatError indicates the model's final text could not be parsed
// into a valid dispatch decision, or the parsed decision is missing
// required fields. Fatal; the conversation is not retried.
type OutputFormatError struct {
	Reason string
	Err    error
}

func (e *OutputFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model did not return valid output: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("model did not return valid output: %s", e.Reason)
}

func (e *OutputFormatError) Unwrap() error { return e.Err }

// IsOutputFormatError checks if an error is an output format error.
func IsOutputFormatError(err error) bool {
	var ofe *OutputFormatError
	return errors.As(err, &ofe)
}

package fieldopt

import "fmt"

// Reason is the closed taxonomy of spec §7.
type Reason string

const (
	ReasonInvalidInput          Reason = "invalid_input"
	ReasonUnknownReference      Reason = "unknown_reference"
	ReasonOutOfWindowPin        Reason = "out_of_window_pin"
	ReasonPinCapacityCollision  Reason = "pin_capacity_collision"
	ReasonInfeasible            Reason = "infeasible"
	ReasonNoObjective           Reason = "no_objective"
	ReasonFailure               Reason = "failure"
)

// Error wraps a Reason with a message and an optional cause. Only
// ReasonInvalidInput and ReasonFailure are ever returned as errors from the
// pipeline; the other reasons are recorded as Diagnostic values instead
// (spec §7's propagation rule).
type Error struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports equality by Reason, so errors.Is(err, &fieldopt.Error{Reason:
// fieldopt.ReasonInvalidInput}) works regardless of message/cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

func newError(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func wrapError(reason Reason, cause error, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...), Cause: cause}
}

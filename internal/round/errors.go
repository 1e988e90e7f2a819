package round

import (
	"errors"
	"fmt"
	"strings"
)

// ErrActiveRound reports an attempt to start a round while another one is
// incomplete. The caller must resume or explicitly discard the active round
// first; silently overwriting in-progress scores is never acceptable.
var ErrActiveRound = errors.New("another round is still in progress")

// StateError reports an invalid transition: entering a hole out of range,
// submitting on a completed session, navigating forward past validation.
// These are programmer-contract violations, not user input problems, and
// should fail loudly in the calling context.
type StateError struct {
	Op     string // the attempted operation
	State  State  // session state at the time
	Detail string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid %s in state %s: %s", e.Op, e.State, e.Detail)
}

// IsStateError reports whether err is (or wraps) a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// Field identifies which input a validation error concerns.
type Field string

const (
	FieldThrows      Field = "throws"
	FieldApproaches  Field = "approaches"
	FieldPutts       Field = "putts"
	FieldConsistency Field = "consistency"
)

// FieldError is one field-scoped validation failure.
type FieldError struct {
	Field   Field
	Message string
}

// ValidationErrors is the full structured error set from one validation
// pass. All applicable field errors are collected together rather than
// short-circuiting at the first failure.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField returns the errors for a single field.
func (v ValidationErrors) ByField(f Field) []FieldError {
	var out []FieldError
	for _, fe := range v {
		if fe.Field == f {
			out = append(out, fe)
		}
	}
	return out
}

// AsValidationErrors unwraps err into a ValidationErrors set.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

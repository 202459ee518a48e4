package errs

import "strings"

// FieldError points at a single invalid field of a request body.
//
//	{ "field": "name", "error": "expected number, got string", "reason": "type_mismatch", "expected": "number" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`

	// Reason is the machine-readable failure kind (missing_field,
	// type_mismatch, unexpected_field).
	Reason string `json:"reason,omitempty"`

	// Expected is the declared type for type mismatches.
	Expected string `json:"expected,omitempty"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional instruction for the client.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error envelope written by the global error handler.
//
// Override tells the error handler the message is safe to show as is.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

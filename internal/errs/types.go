package errs

import (
	"net/http"
)

func codeFor(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "Error"
	}
	return MakeUpperCaseWithUnderscores(text)
}

// NewStatusError creates an HTTPError for any status, with the code derived
// from the status text. Hooks use it to abort a request with a chosen status.
func NewStatusError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(status),
		Message:  message,
		Status:   status,
		Override: true,
	}
}

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusUnauthorized),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusForbidden),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400. code overrides the default BAD_REQUEST
// when not nil; errors carries the field-level details.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := codeFor(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := codeFor(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewUnsupportedMediaTypeError creates a 415 for bodies that are not JSON.
func NewUnsupportedMediaTypeError(contentType string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusUnsupportedMediaType),
		Message:  "Unsupported content type " + contentType + ", expected application/json",
		Status:   http.StatusUnsupportedMediaType,
		Override: true,
	}
}

// NewInternalServerError creates the generic 500. The message is always the
// status text so internal details never reach the client.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

package utils

// AppError is an operational error: expected, carrying a caller-safe message
// and an HTTP status code. Anything that is not an AppError gets rendered as
// a generic 500 by the error boundary.
type AppError struct {
	Message    string
	StatusCode int
}

// NewAppError builds an operational error with the given message and status.
func NewAppError(message string, statusCode int) *AppError {
	return &AppError{Message: message, StatusCode: statusCode}
}

func (e *AppError) Error() string { return e.Message }

// Status maps the code onto the envelope status field: 4xx codes are a
// "fail", everything else an "error".
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

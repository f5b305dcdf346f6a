package extraction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned for blank SMS text. The model is not called.
	ErrEmptyInput = errors.New("sms text is empty")

	// ErrServiceUnavailable is matched by every *ServiceUnavailableError.
	ErrServiceUnavailable = errors.New("extraction service unavailable")

	// ErrIncomplete is matched by every *IncompleteError.
	ErrIncomplete = errors.New("extraction incomplete")
)

// ServiceUnavailableError wraps a transport or service failure of the model call.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("extraction service unavailable: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

func (e *ServiceUnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

// IncompleteError reports a model response that could not be turned into a
// transaction. Status tells a malformed or empty response apart from one that
// parsed but lacked required fields.
type IncompleteError struct {
	Status  ParseStatus
	Missing []string
	Raw     string
}

func (e *IncompleteError) Error() string {
	switch e.Status {
	case StatusEmpty:
		return "extraction incomplete: empty model response"
	case StatusMalformed:
		return "extraction incomplete: model response is not a JSON object"
	default:
		return fmt.Sprintf("extraction incomplete: missing %s", strings.Join(e.Missing, ", "))
	}
}

func (e *IncompleteError) Is(target error) bool { return target == ErrIncomplete }

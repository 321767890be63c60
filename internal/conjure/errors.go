package conjure

import "fmt"

// ErrorCode categorizes generation failures.
type ErrorCode string

const (
	// SchemaConsistencyError: a reference does not resolve in the catalog.
	SchemaConsistencyError ErrorCode = "SchemaConsistencyError"
	// SerializationError: an example could not be encoded for the document.
	SerializationError ErrorCode = "SerializationError"
	// DecodeError: the IR document itself is malformed.
	DecodeError ErrorCode = "DecodeError"
)

// Error is a structured generation error. Type and Endpoint are filled in as
// the error travels outwards so the message names the offending element.
type Error struct {
	Code     ErrorCode
	Message  string
	Type     string
	Service  string
	Endpoint string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Endpoint != "" {
		if e.Service != "" {
			msg = fmt.Sprintf("%s.%s: %s", e.Service, e.Endpoint, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Endpoint, msg)
		}
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

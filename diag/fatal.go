package diag

import "encoding/json"

// Code enumerates the small set of fatal, non-diagnostic error identifiers
// returned from Go functions as an error. These are programmer-misuse or
// malformed-input failures (nil context, unknown file id); anything a
// document author could trigger goes through Collector instead.
type Code string

const (
	ErrNilContext     Code = "ERR_NIL_CONTEXT"
	ErrUnknownFileID  Code = "ERR_UNKNOWN_FILE_ID"
	ErrInvalidCST     Code = "ERR_INVALID_CST"
	ErrReentrantVM    Code = "ERR_REENTRANT_VM"
	ErrInvalidHandler Code = "ERR_INVALID_HANDLER"
)

// FatalError is a uniform error payload, same shape as the teacher's
// CLIError: a stable code plus a human message plus optional detail.
type FatalError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e FatalError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// JSON renders the error as a JSON payload for hosts that surface errors
// structurally rather than as plain text.
func (e FatalError) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Wrap builds a FatalError carrying an inner error's text as Detail.
func Wrap(code Code, msg string, inner error) error {
	return FatalError{Code: code, Message: msg, Detail: inner.Error()}
}

package gateway

import (
	"errors"
	"fmt"
)

// Error codes for everything a gateway call can fail with. The web and
// CLI layers switch on the code to pick a user-facing message; nothing
// below them renders text.
const (
	CodeAuth       = "AUTH"       // bad credentials, retry with new input
	CodeNetwork    = "NETWORK"    // transport failure, retry the action
	CodeServer     = "SERVER"     // 5xx from the API, retry the action
	CodeConflict   = "CONFLICT"   // slot taken between fetch and booking
	CodeValidation = "VALIDATION" // malformed request, not retryable as-is
	CodeNotFound   = "NOT_FOUND"  // stale local cache, never off the wire
)

type Error struct {
	Code    string
	Op      string // gateway operation, e.g. "login"
	Message string // server-supplied detail when present
	Status  int    // HTTP status, 0 for transport failures
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a local cache inconsistency, e.g. confirming against
// an availability record a refetch removed.
func NotFound(op, message string) *Error {
	return &Error{Code: CodeNotFound, Op: op, Message: message}
}

func is(err error, code string) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}

func IsAuth(err error) bool       { return is(err, CodeAuth) }
func IsNetwork(err error) bool    { return is(err, CodeNetwork) }
func IsServer(err error) bool     { return is(err, CodeServer) }
func IsConflict(err error) bool   { return is(err, CodeConflict) }
func IsValidation(err error) bool { return is(err, CodeValidation) }
func IsNotFound(err error) bool   { return is(err, CodeNotFound) }

package rm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by the system API where there is no restart manager
var ErrUnsupported = errors.New("restart manager is only available on windows")

// Status is a raw Win32 status code returned by a restart manager call
type Status uint32

const (
	StatusSuccess            Status = 0
	StatusAccessDenied       Status = 5
	StatusOutOfMemory        Status = 14
	StatusWriteFault         Status = 29
	StatusInvalidParameter   Status = 87
	StatusSemTimeout         Status = 121
	StatusBadArguments       Status = 160
	StatusMoreData           Status = 234
	StatusMaxSessionsReached Status = 353
	StatusCancelled          Status = 1223
)

func (s Status) Error() string {
	return strings.TrimSpace(statusMessage(s))
}

// OSError is a failed restart manager call
type OSError struct {
	Op   string
	Code Status
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: [Windows error 0x%02X] %s", e.Op, uint32(e.Code), e.Code.Error())
}

func (e *OSError) Unwrap() error {
	return e.Code
}

// TruncatedError reports a holder list that did not fit the buffer
type TruncatedError struct {
	Path      string
	Needed    int
	Allocated int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("holder list for %q truncated: %d needed, %d allocated", e.Path, e.Needed, e.Allocated)
}

func wrapOp(op string, err error) error {
	var st Status
	if errors.As(err, &st) {
		return &OSError{Op: op, Code: st}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var fallbackMessages = map[Status]string{
	StatusSuccess:            "The operation completed successfully.",
	StatusAccessDenied:       "Access is denied.",
	StatusOutOfMemory:        "Not enough memory resources are available to complete this operation.",
	StatusWriteFault:         "The system cannot write to the specified device.",
	StatusInvalidParameter:   "The parameter is incorrect.",
	StatusSemTimeout:         "The semaphore timeout period has expired.",
	StatusBadArguments:       "One or more arguments are not correct.",
	StatusMoreData:           "More data is available.",
	StatusMaxSessionsReached: "The maximum number of sessions has been reached.",
	StatusCancelled:          "The operation was canceled by the user.",
}

func fallbackMessage(s Status) string {
	if msg, ok := fallbackMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error %d", uint32(s))
}

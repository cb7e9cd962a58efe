package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout          = "MINE_TIMEOUT"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeAuthExpired      = "AUTH_EXPIRED"
	ErrCodeChallengeTimeout = "CHALLENGE_TIMEOUT"
	ErrCodeStructure        = "STRUCTURE_CHANGED"
	ErrCodePolicyBlocked    = "POLICY_BLOCKED"
	ErrCodeNoResults        = "NO_RESULTS"
	ErrCodeStoreFailed      = "STORE_FAILED"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrBusy rejects a run request while another run holds the single
// browser-session slot.
var ErrBusy = errors.New("a run is already in progress")

// ErrorClass is the coarse failure taxonomy driving retry and run-control
// decisions. Transient errors are retried with backoff; authentication
// errors abort the run; structural errors yield empty record sets and the
// run continues; policy errors abort the current keyword only.
type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassAuthentication
	ClassStructural
	ClassPolicy
	ClassInternal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassAuthentication:
		return "authentication"
	case ClassStructural:
		return "structural"
	case ClassPolicy:
		return "policy"
	default:
		return "internal"
	}
}

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MineError is the internal error type carrying an error code and class.
// It implements the error interface and supports error wrapping via Unwrap.
type MineError struct {
	Code    string
	Class   ErrorClass
	Message string
	Err     error // wrapped original error
}

func (e *MineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MineError) Unwrap() error {
	return e.Err
}

// NewMineError creates a new MineError.
func NewMineError(code string, class ErrorClass, message string, err error) *MineError {
	return &MineError{Code: code, Class: class, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *MineError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ClassOf reports the failure class of err. Raw errors that were never
// wrapped are classified by message inspection, mirroring Categorize.
func ClassOf(err error) ErrorClass {
	var me *MineError
	if errors.As(err, &me) {
		return me.Class
	}
	return Categorize(err, "").Class
}

// Categorize wraps a raw error (typically from the browser layer) into a
// typed MineError so callers can branch on the failure taxonomy. Deadline
// and cancellation errors are transient; everything else is classified by
// message inspection, which is all a CDP error gives us.
func Categorize(err error, msg string) *MineError {
	if msg == "" {
		msg = "operation failed"
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewMineError(ErrCodeTimeout, ClassTransient, msg, err)
	case errors.Is(err, context.Canceled):
		return NewMineError(ErrCodeTimeout, ClassTransient, "operation canceled", err)
	}

	s := strings.ToLower(errString(err))
	switch {
	case strings.Contains(s, "timeout") ||
		strings.Contains(s, "network") ||
		strings.Contains(s, "connection"):
		return NewMineError(ErrCodeTimeout, ClassTransient, msg, err)
	case strings.Contains(s, "navigation"):
		return NewMineError(ErrCodeNavigation, ClassTransient, msg, err)
	default:
		return NewMineError(ErrCodeInternal, ClassInternal, msg, err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package apperrors

import (
	"errors"
	"strings"
)

// appError is the concrete Error.
type appError struct {
	msg        string  // primary message
	base       error   // template this error was derived from
	causes     []error // attached errors, not including base
	statuscode int
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by every attached cause, separated by "; ".
func (e *appError) ErrorAll() string {
	if len(e.causes) == 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.causes {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     append([]error(nil), e.causes...),
		statuscode: e.statuscode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     appendCauses(e.causes, errs),
		statuscode: e.statuscode,
	}
}

// SetStatusCode returns a shallow copy with the status code set.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target is the base chain or one of the attached causes.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func appendCauses(existing, extra []error) []error {
	out := make([]error, 0, len(existing)+len(extra))
	out = append(out, existing...)
	for _, err := range extra {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// New creates a root Error.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

package errs

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError is the wire-level error: a stable code, a human message
// and an optional detail that accumulates as the error climbs layers.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) CodeError {
	return CodeError{Code: code, Msg: msg}
}

func (e CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e CodeError) WithDetail(detail string) CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Wrap attaches a stack trace to the error.
func (e CodeError) Wrap() error {
	return errors.WithStack(e)
}

// WrapMsg appends detail (formatted as "msg, k=v, ...") and attaches a
// stack trace.
func (e CodeError) WrapMsg(msg string, kv ...any) error {
	out := e
	if msg != "" || len(kv) > 0 {
		detail := toString(msg, kv)
		if out.Detail == "" {
			out.Detail = detail
		} else {
			out.Detail += ", " + detail
		}
	}
	return errors.WithStack(out)
}

// Is matches on code only, so wrapped/detailed copies still compare
// equal to their prototype via errors.Is.
func (e CodeError) Is(err error) bool {
	var codeErr CodeError
	if !stderrors.As(err, &codeErr) {
		return false
	}
	return e.Code == codeErr.Code
}

// Unpack extracts the CodeError from an error chain; ok is false for
// plain errors, which callers should surface as internal.
func Unpack(err error) (CodeError, bool) {
	var codeErr CodeError
	if stderrors.As(err, &codeErr) {
		return codeErr, true
	}
	return CodeError{}, false
}

// New builds a plain stack-carrying error for conditions that have no
// wire code (init failures, programming errors).
func New(msg string, kv ...any) error {
	return errors.New(toString(msg, kv))
}

func Wrap(err error) error {
	return errors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, toString(msg, kv))
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		if i+1 < len(kv) {
			sb.WriteString(fmt.Sprintf("%v=%v", kv[i], kv[i+1]))
		} else {
			sb.WriteString(fmt.Sprintf("%v", kv[i]))
		}
	}
	return sb.String()
}

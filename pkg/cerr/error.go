package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"sitewright/pkg/clog"
)

type Error struct {
	Code  Code
	Msg   string // message returned to the caller together with the code
	Err   error  // underlying error kept for logging
	Stack string // stack trace, captured for error-level codes
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.HTTPStatusToLevel(code.HTTPCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

type httpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes response as a JSON body with a 200 status.
func WriteJSON(ctx context.Context, rw http.ResponseWriter, response any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(response); err != nil {
		WriteJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

// WriteJSONError maps err to its HTTP status and writes a JSON error body.
// Non-cerr errors are reported as Unknown without leaking their message.
func WriteJSONError(ctx context.Context, rw http.ResponseWriter, err error) {
	clog.AddError(ctx, err)
	var origErr *Error
	if !errors.As(err, &origErr) {
		origErr = NewError(Unknown, "unknown error", err)
	}
	if origErr.Stack != "" {
		clog.AddStack(ctx, origErr.Stack)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(origErr.Code.HTTPCode())
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if encErr := enc.Encode(httpError{Code: origErr.Code.String(), Message: origErr.Msg}); encErr != nil {
		buf = bytes.NewBufferString(`{"code":"Internal","message":"server error"}`)
		origErr.Err = errors.Join(origErr.Err, encErr)
		clog.AddError(ctx, origErr)
	}
	if _, wErr := rw.Write(buf.Bytes()); wErr != nil {
		origErr.Err = errors.Join(origErr.Err, wErr)
		clog.AddError(ctx, origErr)
	}
}

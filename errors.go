// errors.go: structured error taxonomy for ember, built on go-errors.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
)

const (
	// Config and construction.
	ErrCodeInvalidConfig errors.ErrorCode = "EMBER_INVALID_CONFIG"
	ErrCodeInvalidLevel  errors.ErrorCode = "EMBER_INVALID_LEVEL"
	ErrCodeLoggerClosed  errors.ErrorCode = "EMBER_LOGGER_CLOSED"
	ErrCodeLoggerStopped errors.ErrorCode = "EMBER_LOGGER_STOPPED"

	// Queue / collector.
	ErrCodeQueueFull     errors.ErrorCode = "EMBER_QUEUE_FULL"
	ErrCodeQueueClosed   errors.ErrorCode = "EMBER_QUEUE_CLOSED"
	ErrCodeFlushTimeout  errors.ErrorCode = "EMBER_FLUSH_TIMEOUT"
	ErrCodeShutdownForce errors.ErrorCode = "EMBER_SHUTDOWN_FORCED"

	// Writer / formatter.
	ErrCodeWriteFailed     errors.ErrorCode = "EMBER_WRITE_FAILED"
	ErrCodeFlushFailed     errors.ErrorCode = "EMBER_FLUSH_FAILED"
	ErrCodeWriterUnhealthy errors.ErrorCode = "EMBER_WRITER_UNHEALTHY"
	ErrCodeEncodingFailed  errors.ErrorCode = "EMBER_ENCODING_FAILED"

	// Rotation / file IO.
	ErrCodeFileOpen     errors.ErrorCode = "EMBER_FILE_OPEN"
	ErrCodeFileRotation errors.ErrorCode = "EMBER_FILE_ROTATION"
	ErrCodeFileCompress errors.ErrorCode = "EMBER_FILE_COMPRESS"

	// Sampling / filtering.
	ErrCodeFilterFailed errors.ErrorCode = "EMBER_FILTER_FAILED"

	// Crash guard.
	ErrCodeCrashGuardInstall errors.ErrorCode = "EMBER_CRASHGUARD_INSTALL"
	ErrCodeWALWrite          errors.ErrorCode = "EMBER_WAL_WRITE"

	// Submission.
	ErrCodeSubmissionTimeout errors.ErrorCode = "EMBER_SUBMISSION_TIMEOUT"
)

// ErrorHandler receives errors produced on paths that have no caller to
// return them to (an async writer's failure, a crash-guard flush error).
type ErrorHandler func(err *errors.Error)

var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "[EMBER] %s: %s\n", err.Code, err.Message)
	if err.Cause != nil {
		fmt.Fprintf(os.Stderr, "[EMBER] caused by: %v\n", err.Cause)
	}
}

var currentErrorHandler = defaultErrorHandler

// SetErrorHandler installs a custom handler for errors with no caller to
// report to. Passing nil restores the stderr default.
func SetErrorHandler(h ErrorHandler) {
	if h == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = h
}

func GetErrorHandler() ErrorHandler { return currentErrorHandler }

func handleError(err *errors.Error) {
	if err == nil {
		return
	}
	_ = err.WithContext("goroutines", runtime.NumGoroutine())
	currentErrorHandler(err)
}

// NewError builds an ember error with standard context (component,
// timestamp, caller).
func NewError(code errors.ErrorCode, message string) *errors.Error {
	err := errors.New(code, message).
		WithContext("component", "ember").
		WithContext("timestamp", time.Now().UTC())

	if pc, file, line, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_ = err.WithContext("caller_func", fn.Name())
		}
		_ = err.WithContext("caller_file", file)
		_ = err.WithContext("caller_line", line)
	}
	return err
}

// WrapError wraps a cause with an ember error code.
func WrapError(cause error, code errors.ErrorCode, message string) *errors.Error {
	return errors.Wrap(cause, code, message).
		WithContext("component", "ember").
		WithContext("timestamp", time.Now().UTC())
}

// GetErrorCode extracts the ErrorCode from err, or "" if err isn't an
// *errors.Error.
func GetErrorCode(err error) errors.ErrorCode {
	if e, ok := err.(*errors.Error); ok {
		return e.ErrorCode()
	}
	return ""
}

// HasCode reports whether err carries the given code, walking wrapped causes.
func HasCode(err error, code errors.ErrorCode) bool {
	return errors.HasCode(err, code)
}

// FlushError aggregates the outcome of flushing a writer set that
// contains more than one writer: the first error encountered plus a
// count of how many writers failed, rather than an arbitrary error tree.
type FlushError struct {
	First error
	Count int
}

func (e *FlushError) Error() string {
	if e.Count <= 1 {
		return e.First.Error()
	}
	return fmt.Sprintf("%v (and %d more writer errors)", e.First, e.Count-1)
}

func (e *FlushError) Unwrap() error { return e.First }

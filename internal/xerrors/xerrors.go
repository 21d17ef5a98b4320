// Package xerrors implements the error taxonomy the core raises
// (ValidationError, SafetyError, ExecutionError, StorageError, Killed),
// each wrapping an underlying cause with fmt.Errorf("...: %w") the same
// way every storage and planner error is wrapped elsewhere in this engine.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind tags which bucket of the error taxonomy an error belongs to.
type Kind int

const (
	KindValidation Kind = iota
	KindSafety
	KindStorage
	KindExecution
	KindKilled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindSafety:
		return "SafetyError"
	case KindStorage:
		return "StorageError"
	case KindExecution:
		return "ExecutionError"
	case KindKilled:
		return "Killed"
	}
	return "UnknownError"
}

// DBError is the typed, wrappable error every boundary of the engine
// returns as its user-visible error contract.
type DBError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *DBError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *DBError) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *DBError {
	return &DBError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, err error, format string, args ...interface{}) *DBError {
	return &DBError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...interface{}) *DBError { return newf(KindValidation, format, args...) }
func Safety(format string, args ...interface{}) *DBError     { return newf(KindSafety, format, args...) }
func Execution(format string, args ...interface{}) *DBError  { return newf(KindExecution, format, args...) }
func Killed() *DBError                                       { return newf(KindKilled, "query killed") }

func Storage(err error, format string, args ...interface{}) *DBError {
	return wrapf(KindStorage, err, format, args...)
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *DBError {
	return wrapf(kind, err, format, args...)
}

// Is reports whether err is a DBError of the given kind, unwrapping as
// needed, consistent with errors.Is/As use over storage and executor error
// chains elsewhere in this engine.
func Is(err error, kind Kind) bool {
	for err != nil {
		var dbe *DBError
		if !errors.As(err, &dbe) {
			return false
		}
		if dbe.Kind == kind {
			return true
		}
		err = dbe.Err
	}
	return false
}

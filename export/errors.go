package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines export error kinds.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindCapture    ErrorKind = "capture"
	KindExport     ErrorKind = "export"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
	KindNotImpl    ErrorKind = "not_implemented"
)

// ExportError wraps errors with a kind.
type ExportError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewError creates a new export error.
func NewError(kind ErrorKind, msg string, err error) *ExportError {
	return &ExportError{Kind: kind, Msg: msg, Err: err}
}

// CaptureFailure reports that a surface could not be located or rasterized.
func CaptureFailure(msg string, err error) *ExportError {
	return wrapAs(KindCapture, msg, err)
}

// ExportFailure reports that PDF serialization failed after capture.
func ExportFailure(msg string, err error) *ExportError {
	return wrapAs(KindExport, msg, err)
}

// IsCaptureFailure reports whether err is a CaptureFailure.
func IsCaptureFailure(err error) bool {
	return KindFromError(err) == KindCapture
}

// IsExportFailure reports whether err is an ExportFailure.
func IsExportFailure(err error) bool {
	return KindFromError(err) == KindExport
}

// wrapAs keeps validation, cancellation and not-implemented kinds intact so
// callers can still tell bad input from backend failure.
func wrapAs(kind ErrorKind, msg string, err error) *ExportError {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		switch exportErr.Kind {
		case KindValidation, KindNotImpl, KindCanceled, KindTimeout, kind:
			return exportErr
		}
	}
	if errors.Is(err, context.Canceled) {
		return NewError(KindCanceled, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, msg, err)
	}
	return NewError(kind, msg, err)
}

var kindsByTextCode = map[string]ErrorKind{
	"capture_failed":  KindCapture,
	"export_failed":   KindExport,
	"timeout":         KindTimeout,
	"canceled":        KindCanceled,
	"not_implemented": KindNotImpl,
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var exportErr *ExportError
	if errors.As(err, &exportErr) && exportErr.Msg != "" {
		msg = exportErr.Msg
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindCapture:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("capture_failed")
	case KindExport:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("export_failed")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its export error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		if kind, ok := kindsByTextCode[ge.TextCode]; ok {
			return kind
		}
		switch ge.Category {
		case errorslib.CategoryValidation:
			return KindValidation
		case errorslib.CategoryNotFound:
			return KindNotFound
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}

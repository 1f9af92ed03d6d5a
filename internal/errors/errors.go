package errors

import (
	"errors"

	errorsGo "github.com/go-errors/errors"
)

// failure classes reported by every conversion operation
var (
	ErrInputNotFound     = errors.New(`input not found`)
	ErrOutputNotWritable = errors.New(`output not writable`)
	ErrUnsupportedFormat = errors.New(`unsupported format`)
	ErrImageTooSmall     = fmtWrap(ErrUnsupportedFormat, `image smaller than required radius`)
	ErrMalformedKernel   = errors.New(`malformed kernel`)
	ErrInvalidArgument   = errors.New(`invalid argument`)
	ErrTruncated         = errors.New(`truncated data`)
)

func fmtWrap(base error, msg string) error { return &wrapped{msg: msg, base: base} }

type wrapped struct {
	msg  string
	base error
}

func (w *wrapped) Error() string { return w.base.Error() + `: ` + w.msg }
func (w *wrapped) Unwrap() error { return w.base }

func As(err error, target any) bool { return errorsGo.As(err, target) }

func Is(err, target error) bool { return errorsGo.Is(err, target) }

func Join(errs ...error) error {
	// not implemented by github.com/go-errors/errors
	if err := errorsGo.Join(errs...); err != nil {
		if errGo, okErrGo := err.(*errorsGo.Error); okErrGo {
			return errGo
		}
		return errorsGo.Wrap(err, 1)
	}
	return nil
}

func New(obj any) *Error {
	// return nil for nil unlike github.com/go-errors/errors.New()
	if obj == nil {
		return nil
	}
	// don't overwrite origin of failure
	if errGo, okErrGo := obj.(*errorsGo.Error); okErrGo {
		return errGo
	}
	return errorsGo.Wrap(obj, 1)
}

type Error = errorsGo.Error

// Errorf formats like fmt.Errorf, %w operands stay matchable with Is.
func Errorf(format string, a ...any) *Error { return errorsGo.Errorf(format, a...) }

func Wrap(e any, skip int) *Error { return errorsGo.Wrap(e, skip+1) }

func WrapPrefix(e any, prefix string, skip int) *Error {
	return errorsGo.WrapPrefix(e, prefix, skip+1)
}

// Annotate tags err with a failure class unless it already carries one of
// the package sentinels.
func Annotate(err, class error, msg string) error {
	if err == nil {
		return nil
	}
	for _, s := range []error{
		ErrInputNotFound, ErrOutputNotWritable, ErrUnsupportedFormat,
		ErrMalformedKernel, ErrInvalidArgument, ErrTruncated,
	} {
		if errors.Is(err, s) {
			return err
		}
	}
	return errorsGo.Errorf("%w: %s: %w", class, msg, err)
}

package logging

import "errors"

// reportedError marks an error that has already been logged where it
// happened. The command layer logs every other error exactly once.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported wraps err so IsReported recognises it. errors.Is and errors.As
// still see through the wrapper.
func Reported(err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	return &reportedError{err: err}
}

// IsReported reports whether err, or anything it wraps, was marked by Reported.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

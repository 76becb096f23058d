package report

import "errors"

// DataError marks a failed storage query or a missing user record. It is
// fatal to the generation attempt that raised it: no partial report is
// ever returned alongside one.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ValidationError marks malformed caller input, such as a missing or
// unparseable date range.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// IsDataError reports whether err is (or wraps) a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

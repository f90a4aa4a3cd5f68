package dataset

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable is matched by every error returned when the source
// table cannot be fetched or read.
var ErrDataUnavailable = errors.New("data unavailable")

// UnavailableError indicates the source dataset could not be fetched, parsed,
// or did not carry the required columns.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return "data unavailable"
	}
	if e.URL != "" {
		return fmt.Sprintf("data unavailable at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("data unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports ErrDataUnavailable as a match so callers can use errors.Is.
func (e *UnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

func unavailable(url string, err error) error {
	return &UnavailableError{URL: url, Err: err}
}

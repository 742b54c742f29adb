package weather

import (
	"fmt"
	"net/http"
)

// FetchError indicates that retrieving a series from the remote source failed.
// Callers must show a failure instead of an empty chart.
type FetchError struct {
	Series     SeriesName
	Source     string // URL or object location that was requested
	StatusCode int    // HTTP status code, 0 if no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s from %s: %d %s", e.Series, e.Source, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Series, e.Source, e.Err)
}

// Unwrap allows errors.Is / errors.As to reach the transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// StoreError indicates that the local persistent store could not be opened
// or a transaction against it failed.
type StoreError struct {
	Op     string
	Series SeriesName // empty for store-wide operations
	Err    error
}

func (e *StoreError) Error() string {
	if e.Series == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Series, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InvalidRangeError is returned at the query boundary for a range whose
// start year lies after its end year.
type InvalidRangeError struct {
	Start int
	End   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid year range: start %d is after end %d", e.Start, e.End)
}

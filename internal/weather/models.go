package weather

import (
	"errors"
	"strconv"
)

// SeriesName identifies one of the archived weather series.
type SeriesName string

const (
	SeriesTemperature   SeriesName = "temperature"
	SeriesPrecipitation SeriesName = "precipitation"
)

// ErrUnknownSeries is returned when a name outside the archived set is requested.
var ErrUnknownSeries = errors.New("unknown weather series")

// AllSeries lists every archived series in display order.
func AllSeries() []SeriesName {
	return []SeriesName{SeriesTemperature, SeriesPrecipitation}
}

// ParseSeriesName validates s against the archived set.
func ParseSeriesName(s string) (SeriesName, error) {
	switch SeriesName(s) {
	case SeriesTemperature, SeriesPrecipitation:
		return SeriesName(s), nil
	}
	return "", &unknownSeriesError{name: s}
}

// Title returns the human readable chart title for the series.
func (n SeriesName) Title() string {
	switch n {
	case SeriesTemperature:
		return "Temperature"
	case SeriesPrecipitation:
		return "Precipitation"
	default:
		return string(n)
	}
}

type unknownSeriesError struct {
	name string
}

func (e *unknownSeriesError) Error() string {
	return strconv.Quote(e.name) + ": " + ErrUnknownSeries.Error()
}

func (e *unknownSeriesError) Unwrap() error { return ErrUnknownSeries }

// Sample is one raw observation as delivered by the remote source
// and persisted in the local store.
type Sample struct {
	Label string  `json:"t"`
	Value float64 `json:"v"`
}

// Year returns the integer year encoded at the start of the label.
// "1900" and "1900-07" both yield 1900.
func (s Sample) Year() (int, bool) {
	return parseYear(s.Label)
}

func parseYear(label string) (int, bool) {
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	y, err := strconv.Atoi(label[:end])
	if err != nil {
		return 0, false
	}
	return y, true
}

// YearRange is a closed interval of years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate reports an *InvalidRangeError when Start is after End.
func (r YearRange) Validate() error {
	if r.Start > r.End {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Contains reports whether year lies in the range, endpoints included.
// An inverted range contains nothing.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// AggregatedPoint is the mean of all samples of one year.
type AggregatedPoint struct {
	Year string  `json:"year"`
	Mean float64 `json:"mean"`
}

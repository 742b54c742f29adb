package sources

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/i474232898/weather-archive/internal/weather"
)

// errMalformedDocument is wrapped by every document parsing failure.
var errMalformedDocument = errors.New("malformed series document")

// ParseDocument decodes a series document: an ordered JSON array of
// {"t": "<year label>", "v": <number>} records. Numeric labels are accepted
// and kept verbatim. Every label must start with a year.
func ParseDocument(data []byte) ([]weather.Sample, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", errMalformedDocument)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: top level is %s, want array", errMalformedDocument, doc.Type)
	}

	var (
		samples []weather.Sample
		bad     error
		index   int
	)
	doc.ForEach(func(_, rec gjson.Result) bool {
		defer func() { index++ }()
		if !rec.IsObject() {
			bad = fmt.Errorf("%w: record %d is not an object", errMalformedDocument, index)
			return false
		}

		t := rec.Get("t")
		var label string
		switch t.Type {
		case gjson.String:
			label = t.Str
		case gjson.Number:
			label = t.Raw
		default:
			bad = fmt.Errorf("%w: record %d has no year label", errMalformedDocument, index)
			return false
		}

		if _, ok := (weather.Sample{Label: label}).Year(); !ok {
			bad = fmt.Errorf("%w: record %d label %q does not start with a year", errMalformedDocument, index, label)
			return false
		}

		v := rec.Get("v")
		if v.Type != gjson.Number {
			bad = fmt.Errorf("%w: record %d (%s) has no numeric value", errMalformedDocument, index, label)
			return false
		}
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			bad = fmt.Errorf("%w: record %d (%s) value %s is out of range", errMalformedDocument, index, label, v.Raw)
			return false
		}

		samples = append(samples, weather.Sample{Label: label, Value: v.Num})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return samples, nil
}

package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-archive/internal/weather"
)

func TestParseDocument(t *testing.T) {
	doc := []byte(`[{"t":"1900","v":10},{"t":"1900-06","v":20.5},{"t":1901,"v":-5}]`)

	got, err := ParseDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []weather.Sample{
		{Label: "1900", Value: 10},
		{Label: "1900-06", Value: 20.5},
		{Label: "1901", Value: -5},
	}, got)
}

func TestParseDocumentEmptyArray(t *testing.T) {
	got, err := ParseDocument([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `<html>502 Bad Gateway</html>`},
		{"truncated", `[{"t":"1900","v":1},`},
		{"object", `{"t":"1900","v":1}`},
		{"record not object", `[1, 2, 3]`},
		{"missing label", `[{"v":1}]`},
		{"string value", `[{"t":"1900","v":"cold"}]`},
		{"missing value", `[{"t":"1900"}]`},
		{"empty label", `[{"t":"1900","v":1},{"t":"","v":2}]`},
		{"label without year", `[{"t":"Jan 1900","v":1}]`},
		{"negative number label", `[{"t":-1,"v":1}]`},
		{"value overflows", `[{"t":"1900","v":1e400}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errMalformedDocument), "error %v should wrap errMalformedDocument", err)
		})
	}
}

package chart

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-archive/internal/weather"
)

func TestSurfacePNG(t *testing.T) {
	s := NewSurface("temperature", ReferenceSize, FormatPNG)
	assert.Nil(t, s.Bytes())

	points := []weather.AggregatedPoint{{Year: "1900", Mean: 8.1}, {Year: "1901", Mean: 8.4}}
	require.NoError(t, s.Draw(points, "Temperature", 1900, 1901))

	cfg, err := png.DecodeConfig(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 450, cfg.Height)
	assert.Equal(t, "image/png", s.Format.ContentType())
}

func TestSurfaceSVG(t *testing.T) {
	s := NewSurface("precipitation", ReferenceSize, FormatSVG)
	require.NoError(t, s.Draw(nil, "Precipitation", 1881, 2006))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "<svg"), "output is not svg")
	assert.Contains(t, buf.String(), "no data for 1881-2006")
	assert.Equal(t, "image/svg+xml", s.Format.ContentType())
}

func TestSurfaceRedrawReplacesImage(t *testing.T) {
	s := NewSurface("temperature", Size{Width: 320, Height: 200}, FormatPNG)
	require.NoError(t, s.Draw(nil, "T", 1900, 1901))
	first := s.Bytes()

	require.NoError(t, s.Draw([]weather.AggregatedPoint{{Year: "1900", Mean: 1}}, "T", 1900, 1901))
	assert.NotEqual(t, first, s.Bytes())

	cfg, err := png.DecodeConfig(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

package chart

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-archive/internal/weather"
)

func years(start, n int, value func(i int) float64) []weather.AggregatedPoint {
	points := make([]weather.AggregatedPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, weather.AggregatedPoint{Year: strconv.Itoa(start + i), Mean: value(i)})
	}
	return points
}

func TestLabelStride(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, SparseStride},
		{1, SparseStride},
		{20, SparseStride},
		{40, SparseStride},
		{41, DenseStride},
		{50, DenseStride},
		{126, DenseStride},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelStride(tt.n), "n=%d", tt.n)
	}
}

func TestPlanDenseRange(t *testing.T) {
	points := years(1950, 50, func(i int) float64 { return float64(i) })
	l := Plan(points, "Temperature", 1950, 1999, ReferenceSize, DefaultMargins)

	assert.Equal(t, DenseStride, l.Stride)
	require.Len(t, l.XLabels, 5)
	var got []string
	for _, lb := range l.XLabels {
		got = append(got, lb.Text)
	}
	assert.Equal(t, []string{"1950", "1960", "1970", "1980", "1990"}, got)
	assert.Len(t, l.Line, 50)
	assert.Nil(t, l.Caption)
}

func TestPlanSparseRange(t *testing.T) {
	points := years(1900, 20, func(i int) float64 { return float64(i % 3) })
	l := Plan(points, "Temperature", 1900, 1919, ReferenceSize, DefaultMargins)

	assert.Equal(t, SparseStride, l.Stride)
	assert.Len(t, l.XLabels, 10)
	assert.Equal(t, "1900", l.XLabels[0].Text)
	assert.Equal(t, "1918", l.XLabels[9].Text)
}

func TestPlanGeometry(t *testing.T) {
	points := []weather.AggregatedPoint{
		{Year: "1900", Mean: 0},
		{Year: "1901", Mean: 10},
	}
	l := Plan(points, "T", 1900, 1901, ReferenceSize, DefaultMargins)

	assert.Equal(t, Rect{Left: 50, Top: 50, Right: 750, Bottom: 400}, l.Plot)
	assert.Equal(t, Point{X: 400, Y: 25}, l.Title.At)
	assert.Equal(t, [3]Point{{X: 50, Y: 50}, {X: 50, Y: 400}, {X: 750, Y: 400}}, l.Axis)
	assert.Equal(t, []Point{{X: 50, Y: 400}, {X: 750, Y: 50}}, l.Line)
	assert.Equal(t, 0.0, l.Min)
	assert.Equal(t, 10.0, l.Max)
}

func TestPlanYLabels(t *testing.T) {
	points := []weather.AggregatedPoint{
		{Year: "1900", Mean: -2},
		{Year: "1901", Mean: 3},
	}
	l := Plan(points, "T", 1900, 1901, ReferenceSize, DefaultMargins)

	require.Len(t, l.YLabels, YLabelIntervals+1)
	var got []string
	for _, lb := range l.YLabels {
		got = append(got, lb.Text)
	}
	want := []string{"-2.0", "-1.5", "-1.0", "-0.5", "0.0", "0.5", "1.0", "1.5", "2.0", "2.5", "3.0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("y labels mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Point{X: 40, Y: 400}, l.YLabels[0].At)
	assert.Equal(t, Point{X: 40, Y: 50}, l.YLabels[YLabelIntervals].At)
}

func TestPlanSinglePoint(t *testing.T) {
	points := []weather.AggregatedPoint{{Year: "1900", Mean: 7.25}}
	l := Plan(points, "T", 1900, 1900, ReferenceSize, DefaultMargins)

	require.Len(t, l.Line, 1)
	assert.Equal(t, 400.0, l.Line[0].X)
	assert.Equal(t, 225.0, l.Line[0].Y)
	require.Len(t, l.XLabels, 1)
	assert.Equal(t, "1900", l.XLabels[0].Text)
}

func TestPlanFlatSeries(t *testing.T) {
	points := years(1900, 5, func(int) float64 { return 4 })
	l := Plan(points, "T", 1900, 1904, ReferenceSize, DefaultMargins)

	assert.Equal(t, 3.5, l.Min)
	assert.Equal(t, 4.5, l.Max)
	for _, p := range l.Line {
		assert.Equal(t, 225.0, p.Y)
	}
	assert.Equal(t, "3.5", l.YLabels[0].Text)
	assert.Equal(t, "4.5", l.YLabels[YLabelIntervals].Text)
}

func TestPlanExtremeValuesStayFinite(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"flat large", []float64{1e17, 1e17}},
		{"flat near limit", []float64{math.MaxFloat64, math.MaxFloat64}},
		{"span overflows", []float64{-1.7e308, 1.7e308}},
		{"flat negative limit", []float64{-math.MaxFloat64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := years(1900, len(tt.values), func(i int) float64 { return tt.values[i] })
			l := Plan(points, "T", 1900, 1900+len(tt.values)-1, ReferenceSize, DefaultMargins)

			require.Len(t, l.Line, len(tt.values))
			for _, p := range l.Line {
				assert.False(t, math.IsNaN(p.Y) || math.IsInf(p.Y, 0), "y=%v", p.Y)
				assert.GreaterOrEqual(t, p.Y, l.Plot.Top)
				assert.LessOrEqual(t, p.Y, l.Plot.Bottom)
			}
			for _, lb := range l.YLabels {
				assert.NotContains(t, lb.Text, "NaN")
				assert.NotContains(t, lb.Text, "Inf")
			}
		})
	}
}

func TestPlanFlatLargeValueIsCentered(t *testing.T) {
	points := years(1900, 2, func(int) float64 { return 1e17 })
	l := Plan(points, "T", 1900, 1901, ReferenceSize, DefaultMargins)

	assert.Less(t, l.Min, l.Max)
	assert.Equal(t, 225.0, l.Line[0].Y)
	assert.Equal(t, 225.0, l.Line[1].Y)
}

func TestPlanSpanOverflowKeepsEnds(t *testing.T) {
	points := years(1900, 2, func(i int) float64 { return []float64{-1.7e308, 1.7e308}[i] })
	l := Plan(points, "T", 1900, 1901, ReferenceSize, DefaultMargins)

	assert.Equal(t, 400.0, l.Line[0].Y)
	assert.Equal(t, 50.0, l.Line[1].Y)
}

func TestPlanEmpty(t *testing.T) {
	l := Plan(nil, "Precipitation", 1881, 2006, ReferenceSize, DefaultMargins)

	require.NotNil(t, l.Caption)
	assert.Equal(t, "no data for 1881-2006", l.Caption.Text)
	assert.Equal(t, Point{X: 400, Y: 225}, l.Caption.At)
	assert.Empty(t, l.Line)
	assert.Empty(t, l.XLabels)
	assert.Empty(t, l.YLabels)
}

func TestPlanClipsToRange(t *testing.T) {
	points := years(1900, 10, func(i int) float64 { return float64(i) })
	l := Plan(points, "T", 1903, 1905, ReferenceSize, DefaultMargins)

	assert.Len(t, l.Line, 3)
	assert.Equal(t, "1903", l.XLabels[0].Text)
	assert.Equal(t, 3.0, l.Min)
	assert.Equal(t, 5.0, l.Max)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.0", formatValue(-0.04))
	assert.Equal(t, "12.3", formatValue(12.345))
	assert.Equal(t, "-7.5", formatValue(-7.5))
}

package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/i474232898/weather-archive/internal/weather"
)

// X axis label density. Long ranges are labelled sparsely so year labels
// do not overlap.
const (
	StrideThreshold = 40 // more distinct years than this use DenseStride
	DenseStride     = 10
	SparseStride    = 2
)

// YLabelIntervals is the number of intervals on the value axis; one label is
// drawn at each of the YLabelIntervals+1 boundaries.
const YLabelIntervals = 10

// A zero value range [v, v] is widened by max(flatHalfSpan, |v|*flatRelSpan)
// on each side.
const (
	flatHalfSpan = 0.5
	flatRelSpan  = 1e-9
)

// Size is the pixel size of a drawing surface.
type Size struct {
	Width  int
	Height int
}

// ReferenceSize is the default surface size.
var ReferenceSize = Size{Width: 800, Height: 450}

// Margins reserve space around the plot rectangle.
type Margins struct {
	Left, Right, Top, Bottom int
}

var DefaultMargins = Margins{Left: 50, Right: 50, Top: 50, Bottom: 50}

type Point struct {
	X, Y float64
}

// Rect is the plot rectangle in surface coordinates (y grows downwards).
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Label is a piece of text centered on At.
type Label struct {
	Text string
	At   Point
}

// Layout is the complete geometry of one chart. It holds no drawing state.
type Layout struct {
	Size  Size
	Plot  Rect
	Title Label

	// Axis is the L-shaped frame: top of the value axis, origin, end of the year axis.
	Axis [3]Point

	Stride  int
	XLabels []Label
	YLabels []Label

	// Line holds one vertex per point in ascending year order.
	Line []Point

	// Min and Max bound the value axis after degenerate-range widening.
	Min, Max float64

	// Caption is set when there is nothing to plot.
	Caption *Label
}

// LabelStride returns the year label step for a chart of n distinct years.
func LabelStride(n int) int {
	if n > StrideThreshold {
		return DenseStride
	}
	return SparseStride
}

// Plan computes the layout for points, which must be ordered by ascending
// year. Points outside [startYear, endYear] are ignored.
func Plan(points []weather.AggregatedPoint, title string, startYear, endYear int, size Size, m Margins) Layout {
	points = clip(points, startYear, endYear)

	plot := Rect{
		Left:   float64(m.Left),
		Top:    float64(m.Top),
		Right:  float64(size.Width - m.Right),
		Bottom: float64(size.Height - m.Bottom),
	}

	l := Layout{
		Size:  size,
		Plot:  plot,
		Title: Label{Text: title, At: Point{X: float64(size.Width) / 2, Y: float64(m.Top) / 2}},
		Axis: [3]Point{
			{X: plot.Left, Y: plot.Top},
			{X: plot.Left, Y: plot.Bottom},
			{X: plot.Right, Y: plot.Bottom},
		},
		Stride: LabelStride(len(points)),
	}

	if len(points) == 0 {
		l.Caption = &Label{
			Text: fmt.Sprintf("no data for %d-%d", startYear, endYear),
			At:   Point{X: plot.Left + plot.Width()/2, Y: plot.Top + plot.Height()/2},
		}
		return l
	}

	l.Min, l.Max = valueBounds(points)

	n := len(points)
	for i := 0; i < n; i += l.Stride {
		l.XLabels = append(l.XLabels, Label{
			Text: points[i].Year,
			At:   Point{X: xAt(i, n, plot), Y: plot.Bottom + 20},
		})
	}

	for i := 0; i <= YLabelIntervals; i++ {
		frac := float64(i) / YLabelIntervals
		v := min(max(l.Min*(1-frac)+l.Max*frac, l.Min), l.Max)
		l.YLabels = append(l.YLabels, Label{
			Text: formatValue(v),
			At:   Point{X: plot.Left - 10, Y: plot.Bottom - frac*plot.Height()},
		})
	}

	l.Line = make([]Point, 0, n)
	for i, p := range points {
		l.Line = append(l.Line, Point{
			X: xAt(i, n, plot),
			Y: yAt(p.Mean, l.Min, l.Max, plot),
		})
	}
	return l
}

// xAt maps point index i of n onto the plot width. A single point is centered.
func xAt(i, n int, plot Rect) float64 {
	if n == 1 {
		return plot.Left + plot.Width()/2
	}
	return plot.Left + float64(i)/float64(n-1)*plot.Width()
}

func valueBounds(points []weather.AggregatedPoint) (lo, hi float64) {
	lo, hi = points[0].Mean, points[0].Mean
	for _, p := range points[1:] {
		lo = min(lo, p.Mean)
		hi = max(hi, p.Mean)
	}
	if hi == lo {
		v := lo
		half := max(flatHalfSpan, math.Abs(v)*flatRelSpan)
		lo, hi = v-half, v+half
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return v, v
		}
	}
	return lo, hi
}

// yAt maps v onto the plot height. Halving before subtracting keeps the span
// finite for values near the float64 limits; an unusable span puts v at
// mid-height.
func yAt(v, lo, hi float64, plot Rect) float64 {
	span := hi/2 - lo/2
	if !(span > 0) || math.IsInf(span, 0) {
		return plot.Top + plot.Height()/2
	}
	return plot.Bottom - (v/2-lo/2)/span*plot.Height()
}

func clip(points []weather.AggregatedPoint, startYear, endYear int) []weather.AggregatedPoint {
	result := make([]weather.AggregatedPoint, 0, len(points))
	for _, p := range points {
		y, err := strconv.Atoi(p.Year)
		if err != nil || y < startYear || y > endYear {
			continue
		}
		result = append(result, p)
	}
	return result
}

func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

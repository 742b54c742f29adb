package chart

import (
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/weather-archive/internal/weather"
)

// Canvas is the drawing surface the renderer paints on. go-chart's
// Renderer (PNG and SVG) satisfies it.
type Canvas interface {
	SetStrokeColor(drawing.Color)
	SetFillColor(drawing.Color)
	SetStrokeWidth(width float64)
	MoveTo(x, y int)
	LineTo(x, y int)
	Close()
	Stroke()
	Fill()
	Circle(radius float64, x, y int)
	SetFontColor(drawing.Color)
	SetFontSize(size float64)
	Text(body string, x, y int)
	MeasureText(body string) gochart.Box
}

// Style holds colors and sizes used when painting.
type Style struct {
	Background drawing.Color
	Axis       drawing.Color
	Text       drawing.Color
	Line       drawing.Color
	Marker     drawing.Color

	TitleFontSize float64
	LabelFontSize float64
	AxisWidth     float64
	LineWidth     float64
	PointRadius   float64
}

var DefaultStyle = Style{
	Background: drawing.Color{R: 255, G: 255, B: 255, A: 255},
	Axis:       drawing.Color{R: 0, G: 0, B: 0, A: 255},
	Text:       drawing.Color{R: 0, G: 0, B: 0, A: 255},
	Line:       drawing.Color{R: 0, G: 0, B: 255, A: 255},
	Marker:     drawing.Color{R: 0, G: 0, B: 255, A: 255},

	TitleFontSize: 16,
	LabelFontSize: 12,
	AxisWidth:     1,
	LineWidth:     1.5,
	PointRadius:   2,
}

// Renderer draws year/value line charts. It keeps no state between calls:
// every Draw clears and repaints the whole canvas.
type Renderer struct {
	Size    Size
	Margins Margins
	Style   Style
}

// NewRenderer returns a renderer for a surface of the given size with the
// default margins and style.
func NewRenderer(size Size) *Renderer {
	return &Renderer{Size: size, Margins: DefaultMargins, Style: DefaultStyle}
}

// Plan computes the layout Draw would paint.
func (r *Renderer) Plan(points []weather.AggregatedPoint, title string, startYear, endYear int) Layout {
	return Plan(points, title, startYear, endYear, r.Size, r.Margins)
}

// Draw paints points (ascending by year) onto c. Empty input, a single
// point and a constant series all produce a complete chart.
func (r *Renderer) Draw(c Canvas, points []weather.AggregatedPoint, title string, startYear, endYear int) {
	r.paint(c, r.Plan(points, title, startYear, endYear))
}

func (r *Renderer) paint(c Canvas, l Layout) {
	st := r.Style

	// Clear.
	c.SetFillColor(st.Background)
	c.MoveTo(0, 0)
	c.LineTo(l.Size.Width, 0)
	c.LineTo(l.Size.Width, l.Size.Height)
	c.LineTo(0, l.Size.Height)
	c.Close()
	c.Fill()

	c.SetFontColor(st.Text)
	c.SetFontSize(st.TitleFontSize)
	drawLabel(c, l.Title)

	c.SetStrokeColor(st.Axis)
	c.SetStrokeWidth(st.AxisWidth)
	moveTo(c, l.Axis[0])
	lineTo(c, l.Axis[1])
	lineTo(c, l.Axis[2])
	c.Stroke()

	c.SetFontSize(st.LabelFontSize)
	if l.Caption != nil {
		drawLabel(c, *l.Caption)
		return
	}
	for _, lb := range l.XLabels {
		drawLabel(c, lb)
	}
	for _, lb := range l.YLabels {
		drawLabel(c, lb)
	}

	c.SetStrokeColor(st.Line)
	c.SetStrokeWidth(st.LineWidth)
	for i, p := range l.Line {
		if i == 0 {
			moveTo(c, p)
			continue
		}
		lineTo(c, p)
	}
	c.Stroke()

	c.SetFillColor(st.Marker)
	for _, p := range l.Line {
		c.Circle(st.PointRadius, px(p.X), px(p.Y))
		c.Fill()
	}
}

// drawLabel centers the label text on its anchor.
func drawLabel(c Canvas, lb Label) {
	if lb.Text == "" {
		return
	}
	box := c.MeasureText(lb.Text)
	c.Text(lb.Text, px(lb.At.X)-box.Width()/2, px(lb.At.Y)+box.Height()/2)
}

func moveTo(c Canvas, p Point) { c.MoveTo(px(p.X), px(p.Y)) }
func lineTo(c Canvas, p Point) { c.LineTo(px(p.X), px(p.Y)) }

func px(v float64) int {
	return int(math.Round(v))
}

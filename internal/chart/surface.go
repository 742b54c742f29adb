package chart

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/i474232898/weather-archive/internal/weather"
)

// Format is the image encoding of a Surface.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type of images in format f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Surface is a fixed-size drawing target addressed by ID. Each Draw paints
// onto a fresh go-chart renderer and replaces the stored image.
type Surface struct {
	ID     string
	Format Format

	renderer *Renderer

	mu    sync.Mutex
	image []byte
}

func NewSurface(id string, size Size, format Format) *Surface {
	return &Surface{
		ID:       id,
		Format:   format,
		renderer: NewRenderer(size),
	}
}

// Size returns the pixel size of the surface.
func (s *Surface) Size() Size {
	return s.renderer.Size
}

// Draw repaints the surface with points.
func (s *Surface) Draw(points []weather.AggregatedPoint, title string, startYear, endYear int) error {
	provider := gochart.PNG
	if s.Format == FormatSVG {
		provider = gochart.SVG
	}

	size := s.renderer.Size
	r, err := provider(size.Width, size.Height)
	if err != nil {
		return fmt.Errorf("surface %s: create renderer: %w", s.ID, err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("surface %s: load font: %w", s.ID, err)
	}
	r.SetFont(font)

	s.renderer.Draw(r, points, title, startYear, endYear)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return fmt.Errorf("surface %s: encode %s: %w", s.ID, s.Format, err)
	}

	s.mu.Lock()
	s.image = buf.Bytes()
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"surface": s.ID,
		"points":  len(points),
		"size":    humanize.Bytes(uint64(buf.Len())),
	}).Debug("chart rendered")
	return nil
}

// Bytes returns the last painted image, or nil before the first Draw.
func (s *Surface) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// WriteTo writes the last painted image to w.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

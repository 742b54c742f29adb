package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-archive/internal/chart"
	"github.com/i474232898/weather-archive/internal/weather"
)

var validate = validator.New()

// Options configures the registered routes.
type Options struct {
	// DefaultRange is used for missing start/end query parameters.
	DefaultRange weather.YearRange
	ChartSize    chart.Size
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.ChartSize.Width <= 0 || opts.ChartSize.Height <= 0 {
		opts.ChartSize = chart.ReferenceSize
	}

	v1 := app.Group("/api/v1")

	v1.Get("/series/:name", func(c *fiber.Ctx) error {
		q, err := bindSeriesQuery(c, opts.DefaultRange)
		if err != nil {
			return err
		}

		samples, err := service.GetSeries(c.UserContext(), q.name(), q.yearRange())
		if err != nil {
			return toFiberError(err)
		}

		return c.JSON(fiber.Map{
			"series":  q.Series,
			"start":   q.Start,
			"end":     q.End,
			"samples": samples,
		})
	})

	v1.Get("/series/:name/yearly", func(c *fiber.Ctx) error {
		q, err := bindSeriesQuery(c, opts.DefaultRange)
		if err != nil {
			return err
		}

		points, err := service.Aggregate(c.UserContext(), q.name(), q.yearRange())
		if err != nil {
			return toFiberError(err)
		}

		return c.JSON(fiber.Map{
			"series": q.Series,
			"start":  q.Start,
			"end":    q.End,
			"points": points,
		})
	})

	v1.Get("/charts/:name", func(c *fiber.Ctx) error {
		q, err := bindSeriesQuery(c, opts.DefaultRange)
		if err != nil {
			return err
		}
		format, err := chartFormat(c)
		if err != nil {
			return err
		}

		// Retrieval must fully resolve before anything is painted.
		points, err := service.Aggregate(c.UserContext(), q.name(), q.yearRange())
		if err != nil {
			return toFiberError(err)
		}

		surface := chart.NewSurface("chart-"+q.Series, opts.ChartSize, format)
		if err := surface.Draw(points, q.name().Title(), q.Start, q.End); err != nil {
			log.WithError(err).WithField("series", q.Series).Error("chart rendering failed")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}

		c.Set(fiber.HeaderContentType, format.ContentType())
		return c.Send(surface.Bytes())
	})
}

// seriesQuery holds the path and query parameters shared by all series routes.
type seriesQuery struct {
	Series string `validate:"required"`
	Start  int
	End    int `validate:"gtefield=Start"`
}

func (q seriesQuery) name() weather.SeriesName {
	return weather.SeriesName(q.Series)
}

func (q seriesQuery) yearRange() weather.YearRange {
	return weather.YearRange{Start: q.Start, End: q.End}
}

func bindSeriesQuery(c *fiber.Ctx, def weather.YearRange) (seriesQuery, error) {
	q := seriesQuery{
		Series: c.Params("name"),
		Start:  def.Start,
		End:    def.End,
	}

	if _, err := weather.ParseSeriesName(q.Series); err != nil {
		return q, fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	var err error
	if q.Start, err = parseYear(c.Query("start"), def.Start); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("start: %v", err))
	}
	if q.End, err = parseYear(c.Query("end"), def.End); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("end: %v", err))
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "End" {
			err = q.yearRange().Validate()
		}
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

// chartFormat picks the image encoding: an explicit ?format= wins, otherwise
// the Accept header decides and PNG is preferred on ties.
func chartFormat(c *fiber.Ctx) (chart.Format, error) {
	switch f := chart.Format(c.Query("format")); f {
	case chart.FormatPNG, chart.FormatSVG:
		return f, nil
	case "":
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("format: unsupported %q", f))
	}

	switch c.Accepts(chart.FormatPNG.ContentType(), chart.FormatSVG.ContentType()) {
	case chart.FormatSVG.ContentType():
		return chart.FormatSVG, nil
	case chart.FormatPNG.ContentType():
		return chart.FormatPNG, nil
	default:
		return "", fiber.NewError(fiber.StatusNotAcceptable, "chart is available as image/png or image/svg+xml")
	}
}

func parseYear(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("year must be an integer")
	}
	return y, nil
}

// toFiberError maps retrieval failures to HTTP statuses. A failed fetch is
// never reported as an empty series.
func toFiberError(err error) error {
	var (
		fetchErr *weather.FetchError
		storeErr *weather.StoreError
		rangeErr *weather.InvalidRangeError
	)
	switch {
	case errors.Is(err, weather.ErrUnknownSeries):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &rangeErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &fetchErr):
		log.WithError(err).Warn("series fetch failed")
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch series from remote source")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "series retrieval timed out")
	case errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusRequestTimeout, "request cancelled")
	case errors.As(err, &storeErr):
		log.WithError(err).Error("store failure")
		return fiber.NewError(fiber.StatusInternalServerError, "local series store unavailable")
	default:
		log.WithError(err).Error("unexpected retrieval error")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to retrieve series")
	}
}

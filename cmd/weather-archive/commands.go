package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	httpapi "github.com/i474232898/weather-archive/internal/api/http"
	"github.com/i474232898/weather-archive/internal/chart"
	"github.com/i474232898/weather-archive/internal/config"
	"github.com/i474232898/weather-archive/internal/scheduler"
	"github.com/i474232898/weather-archive/internal/weather"
)

func rangeFlags(cfg *config.AppConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "series",
			Aliases: []string{"s"},
			Usage:   "series to show (temperature, precipitation)",
			Value:   string(weather.SeriesTemperature),
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "first year, inclusive",
			Value: strconv.Itoa(cfg.DefaultRange.Start),
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "last year, inclusive",
			Value: strconv.Itoa(cfg.DefaultRange.End),
		},
	}
}

// rangeArgs validates the series and year range flags before any I/O.
func rangeArgs(cmd *cli.Command) (weather.SeriesName, weather.YearRange, error) {
	name, err := weather.ParseSeriesName(cmd.String("series"))
	if err != nil {
		return "", weather.YearRange{}, err
	}
	var rng weather.YearRange
	if rng.Start, err = strconv.Atoi(cmd.String("start")); err != nil {
		return "", weather.YearRange{}, fmt.Errorf("invalid start year %q", cmd.String("start"))
	}
	if rng.End, err = strconv.Atoi(cmd.String("end")); err != nil {
		return "", weather.YearRange{}, fmt.Errorf("invalid end year %q", cmd.String("end"))
	}
	if err := rng.Validate(); err != nil {
		return "", weather.YearRange{}, err
	}
	return name, rng, nil
}

func serveCommand(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the series and chart HTTP API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, st, err := openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			// Scheduler that keeps both series cached.
			sched := scheduler.New(weather.AllSeries(), cfg.WarmInterval, cfg.FetchTimeout, service)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := httpapi.NewApp(service, httpapi.Options{
				DefaultRange: cfg.DefaultRange,
				ChartSize:    chart.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
			})

			errCh := make(chan error, 1)
			go func() {
				log.WithField("port", cfg.Port).Info("http server listening")
				errCh <- app.Listen(":" + cfg.Port)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("fiber server stopped: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.WithError(err).Error("error during shutdown")
			}
			return nil
		},
	}
}

func renderCommand(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render a chart of the yearly means to an image file",
		Flags: append(rangeFlags(cfg),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file (default <series>.<format>)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "image format (png, svg)",
				Value: string(chart.FormatPNG),
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, rng, err := rangeArgs(cmd)
			if err != nil {
				return err
			}
			format := chart.Format(cmd.String("format"))
			if format != chart.FormatPNG && format != chart.FormatSVG {
				return fmt.Errorf("unsupported format %q", format)
			}
			out := cmd.String("out")
			if out == "" {
				out = fmt.Sprintf("%s.%s", name, format)
			}

			service, st, err := openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			points, err := service.Aggregate(ctx, name, rng)
			if err != nil {
				return err
			}

			surface := chart.NewSurface(out, chart.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight}, format)
			if err := surface.Draw(points, name.Title(), rng.Start, rng.End); err != nil {
				return err
			}
			if err := os.WriteFile(out, surface.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			log.WithFields(log.Fields{"file": out, "years": len(points)}).Info("chart written")
			return nil
		},
	}
}

func seriesCommand(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "series",
		Usage: "print the yearly means of a series",
		Flags: rangeFlags(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, rng, err := rangeArgs(cmd)
			if err != nil {
				return err
			}

			service, st, err := openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			points, err := service.Aggregate(ctx, name, rng)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%.2f\n", p.Year, p.Mean)
			}
			return nil
		},
	}
}

func warmCommand(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "fetch and cache every series that is not cached yet",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, st, err := openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, name := range weather.AllSeries() {
				if err := service.Populate(ctx, name); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				log.WithField("series", name).Info("series cached")
			}
			return nil
		},
	}
}

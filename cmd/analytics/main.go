// Command analytics fetches content and search-log metrics for a date
// window, tabulates them, and publishes CSV reports to Drive and Slack.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"content-analytics/internal/analytics"
	"content-analytics/internal/config"
	"content-analytics/internal/gdrive"
	"content-analytics/internal/model"
	"content-analytics/internal/runner"
	"content-analytics/internal/scalyr"
	"content-analytics/internal/slacknotify"
	"content-analytics/internal/tribapi"
)

const dateLayout = "2006-01-02"

type options struct {
	configPath string
	days       int
	start      string
	end        string
	outDir     string
	noUpload   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "analytics",
		Short: "Build and publish content and search analytics reports",
		Long: `analytics fetches published-content metadata and search-log matches
for a date window, computes the standard tabulations, and publishes the
resulting CSVs to Google Drive with a Slack summary.

Run without a subcommand to produce both reports, as the weekly job does.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "content", "search")
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	pf.IntVar(&opts.days, "days", 0, "how many days back to report (default 7, from config)")
	pf.StringVar(&opts.start, "start", "", "window start date (YYYY-MM-DD), overrides --days")
	pf.StringVar(&opts.end, "end", "", "window end date (YYYY-MM-DD), defaults to today")
	pf.StringVar(&opts.outDir, "out", "", "also write the CSV to this directory")
	pf.BoolVar(&opts.noUpload, "no-upload", false, "skip upload and notification (requires --out)")

	root.AddCommand(
		&cobra.Command{
			Use:   "content",
			Short: "Run only the content analytics report",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), opts, "content")
			},
		},
		&cobra.Command{
			Use:   "search",
			Short: "Run only the search analytics report",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), opts, "search")
			},
		},
	)
	return root
}

func run(ctx context.Context, opts *options, kinds ...string) error {
	// Local .env is optional; the deploy environment sets real vars.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.NewString()))

	window, days, err := resolveWindow(opts, cfg.Report.Days, time.Now())
	if err != nil {
		return err
	}
	log.Info("reporting window",
		zap.String("start", window.StartDate()),
		zap.String("end", window.EndDate()),
		zap.Int("days", days))

	r := &runner.Runner{OutDir: opts.outDir, NoUpload: opts.noUpload, Log: log}
	if opts.noUpload {
		if opts.outDir == "" {
			return errors.New("--no-upload requires --out")
		}
	} else {
		if err := cfg.ValidatePublish(); err != nil {
			return err
		}
		drive, err := gdrive.New(ctx, cfg.Drive, log)
		if err != nil {
			return err
		}
		r.Uploader = drive
		r.Notifier = slacknotify.New(cfg.Slack, cfg.API.Timeout, log)
	}

	for _, kind := range kinds {
		rep, err := buildReport(kind, cfg, window, days, log)
		if err != nil {
			return err
		}
		if err := r.Publish(ctx, rep); err != nil {
			return err
		}
	}
	return nil
}

func buildReport(kind string, cfg *config.Config, w model.Window, days int, log *zap.Logger) (runner.Report, error) {
	switch kind {
	case "content":
		api := tribapi.New(cfg.API.BaseURL, cfg.API.Timeout, log)
		return analytics.NewContent(api, w, log), nil
	case "search":
		if err := cfg.ValidateSearch(); err != nil {
			return nil, err
		}
		api := scalyr.New(cfg.Scalyr.BaseURL, cfg.Scalyr.Token, cfg.API.Timeout, log)
		return analytics.NewSearch(api, w, days, cfg.Scalyr.Filter, cfg.Scalyr.MaxCount, cfg.Report.ExcludeSearches, log), nil
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
}

// resolveWindow applies flag overrides: explicit start/end dates win
// over --days, which wins over the configured default.
func resolveWindow(opts *options, defaultDays int, now time.Time) (model.Window, int, error) {
	days := defaultDays
	if opts.days > 0 {
		days = opts.days
	}

	end := now
	if opts.end != "" {
		parsed, err := time.Parse(dateLayout, opts.end)
		if err != nil {
			return model.Window{}, 0, fmt.Errorf("invalid --end date: %w", err)
		}
		end = parsed
	}

	if opts.start != "" {
		start, err := time.Parse(dateLayout, opts.start)
		if err != nil {
			return model.Window{}, 0, fmt.Errorf("invalid --start date: %w", err)
		}
		if start.After(end) {
			return model.Window{}, 0, errors.New("--start is after --end")
		}
		w := model.NewWindow(start, end)
		return w, int(w.End.Sub(w.Start).Hours() / 24), nil
	}

	return model.LastNDays(days, end), days, nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

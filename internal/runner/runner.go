// Package runner publishes a finished report: rows -> CSV -> upload ->
// notify.
package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"content-analytics/internal/model"
	"content-analytics/internal/report"
)

// Report is a fully configured analytics run. Rows must be called
// before Summary; the summary accumulates while rows are built.
type Report interface {
	Kind() string
	Filename() string
	Rows(ctx context.Context) ([]model.ReportRow, error)
	Summary() *model.Summary
}

// Uploader stores a CSV blob and returns a shareable URL.
type Uploader interface {
	UploadCSV(ctx context.Context, title string, data []byte) (string, error)
}

// Notifier posts the summary and link to a chat channel.
type Notifier interface {
	Notify(ctx context.Context, kind, fileURL, filename string, summary *model.Summary) error
}

// Runner drives one report through export and publication.
type Runner struct {
	Uploader Uploader
	Notifier Notifier
	OutDir   string // optional local CSV copy
	NoUpload bool
	Log      *zap.Logger
}

// Publish builds the report's rows, serializes them, and pushes the CSV
// to the configured sinks. Upload failure aborts; notification failure
// is logged and swallowed, since the report itself already succeeded.
func (r *Runner) Publish(ctx context.Context, rep Report) error {
	rows, err := rep.Rows(ctx)
	if err != nil {
		return fmt.Errorf("%s report: %w", rep.Kind(), err)
	}

	blob, err := report.ToCSV(rows)
	if err != nil {
		return fmt.Errorf("%s report: %w", rep.Kind(), err)
	}
	filename := rep.Filename()

	if r.OutDir != "" {
		path, err := report.WriteFile(r.OutDir, filename, blob)
		if err != nil {
			return fmt.Errorf("%s report: %w", rep.Kind(), err)
		}
		r.Log.Info("report written", zap.String("path", path), zap.Int("rows", len(rows)))
	}

	if r.NoUpload {
		return nil
	}

	fileURL, err := r.Uploader.UploadCSV(ctx, filename, blob)
	if err != nil {
		return fmt.Errorf("%s report: %w", rep.Kind(), err)
	}
	r.Log.Info("report uploaded",
		zap.String("filename", filename),
		zap.String("url", fileURL))

	if err := r.Notifier.Notify(ctx, rep.Kind(), fileURL, filename, rep.Summary()); err != nil {
		r.Log.Warn("notification failed", zap.String("report", rep.Kind()), zap.Error(err))
	}
	return nil
}

// Package gdrive uploads report CSVs to a shared Google Drive folder.
package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"content-analytics/internal/config"
)

// spreadsheetMIME converts the uploaded CSV into a Google Sheet so the
// folder shows a viewable spreadsheet, not a raw file.
const (
	spreadsheetMIME = "application/vnd.google-apps.spreadsheet"
	csvMIME         = "text/csv"
	sinkName        = "google drive"
)

// UploadError reports a failed upload, naming the sink and, when the
// API supplied one, the HTTP status.
type UploadError struct {
	Sink   string
	Status int
	Msg    string
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload to %s failed: status %d: %s", e.Sink, e.Status, e.Msg)
	}
	return fmt.Sprintf("upload to %s failed: %s", e.Sink, e.Msg)
}

// Drive is the Google Drive upload sink.
type Drive struct {
	svc         *drive.Service
	folderID    string
	shareDomain string
	log         *zap.Logger
}

// CredentialsPath resolves the service-account keyfile: the configured
// path if it exists, else the same filename under the fallback
// directory.
func CredentialsPath(file, fallbackDir string) string {
	if _, err := os.Stat(file); err == nil {
		return file
	}
	return filepath.Join(fallbackDir, filepath.Base(file))
}

// New builds an authorized Drive sink from a service-account keyfile.
func New(ctx context.Context, cfg config.DriveConfig, log *zap.Logger) (*Drive, error) {
	credPath := CredentialsPath(cfg.CredentialsFile, cfg.FallbackDir)
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credPath),
		option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Drive{
		svc:         svc,
		folderID:    cfg.FolderID,
		shareDomain: cfg.ShareDomain,
		log:         log,
	}, nil
}

// UploadCSV stores the blob in the parent folder as a spreadsheet,
// shares it with the configured domain, and returns the permanent
// web-view URL. Failures are not retried.
func (d *Drive) UploadCSV(ctx context.Context, title string, data []byte) (string, error) {
	meta := &drive.File{
		Name:     title,
		Parents:  []string{d.folderID},
		MimeType: spreadsheetMIME,
	}
	created, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(csvMIME)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", uploadError(err)
	}
	if created.Id == "" {
		return "", &UploadError{Sink: sinkName, Msg: "create response missing file id"}
	}
	d.log.Info("csv uploaded", zap.String("title", title), zap.String("file_id", created.Id))

	if d.shareDomain != "" {
		if err := d.shareWithDomain(ctx, created.Id); err != nil {
			return "", err
		}
	}
	return d.fileURL(ctx, created.Id)
}

// shareWithDomain grants read/write to everyone in the organization
// domain and lets the file show up in their Drive search.
func (d *Drive) shareWithDomain(ctx context.Context, fileID string) error {
	perm := &drive.Permission{
		Role:               "writer",
		Type:               "domain",
		Domain:             d.shareDomain,
		AllowFileDiscovery: true,
	}
	if _, err := d.svc.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
		return uploadError(err)
	}
	return nil
}

// fileURL fetches the file's full web-view URL from its ID.
func (d *Drive) fileURL(ctx context.Context, fileID string) (string, error) {
	got, err := d.svc.Files.Get(fileID).Fields("webViewLink").Context(ctx).Do()
	if err != nil {
		return "", uploadError(err)
	}
	return got.WebViewLink, nil
}

func uploadError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &UploadError{Sink: sinkName, Status: gerr.Code, Msg: gerr.Message}
	}
	return &UploadError{Sink: sinkName, Msg: err.Error()}
}

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ExportingBackend is a backend that writes a file at match end.
type ExportingBackend interface {
	storage.Backend
	storage.Exportable
}

// Uploader wraps a backend and sends its match export to the archive
// service once the match has ended. A failed upload leaves the file on
// disk and is reported as an EndMatch error.
type Uploader struct {
	ExportingBackend

	client  *Client
	log     zerolog.Logger
	now     func() time.Time
	timeout time.Duration

	match         core.Match
	notifications int
}

func NewUploader(inner ExportingBackend, client *Client, log zerolog.Logger) *Uploader {
	return &Uploader{
		ExportingBackend: inner,
		client:           client,
		log:              log.With().Str("component", "uploader").Logger(),
		now:              time.Now,
		timeout:          2 * time.Minute,
	}
}

func (u *Uploader) StartMatch(m *core.Match) error {
	u.match = *m
	u.notifications = 0
	return u.ExportingBackend.StartMatch(m)
}

func (u *Uploader) RecordNotification(e *core.NotificationEvent) error {
	u.notifications++
	return u.ExportingBackend.RecordNotification(e)
}

func (u *Uploader) EndMatch() error {
	endErr := u.ExportingBackend.EndMatch()

	path := u.ExportedFilePath()
	if path == "" || u.match.SessionID == "" {
		u.log.Warn().Msg("No export file to upload")
		return endErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()
	err := u.client.Upload(ctx, path, UploadMetadata{
		SessionID:     u.match.SessionID,
		Mode:          u.match.Mode.String(),
		StartTime:     u.match.StartTime,
		Duration:      u.now().Sub(u.match.StartTime),
		Notifications: u.notifications,
	})
	if err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("Match upload failed, export kept on disk")
	} else {
		u.log.Info().Str("path", path).Str("session", u.match.SessionID).Msg("Match uploaded")
	}
	u.match = core.Match{}
	return errors.Join(endErr, err)
}

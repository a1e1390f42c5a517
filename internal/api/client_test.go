package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/pkg/core"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", "secret")
	assert.Equal(t, "http://localhost:5000", c.baseURL)
	assert.Equal(t, "secret", c.secret)
	assert.NotNil(t, c.httpClient)
}

func TestHealthcheck(t *testing.T) {
	for _, tt := range []struct {
		status  int
		wantErr bool
	}{
		{http.StatusOK, false},
		{http.StatusInternalServerError, true},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, healthPath, r.URL.Path)
			w.WriteHeader(tt.status)
		}))
		err := New(server.URL, "").Healthcheck(context.Background())
		server.Close()
		assert.Equal(t, tt.wantErr, err != nil, "status %d", tt.status)
	}
}

func TestHealthcheck_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	assert.Error(t, New(url, "").Healthcheck(context.Background()))
}

type received struct {
	fields map[string]string
	file   string
}

func uploadServer(t *testing.T, status int, got *received) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, uploadPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			return
		}
		got.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			got.file = string(data)
			f.Close()
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tormentor_20260101_120000_abc.json.gz")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUpload_Success(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusCreated, &got)
	path := writeExport(t, "test content")

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	err := New(server.URL, "mysecret").Upload(context.Background(), path, UploadMetadata{
		SessionID:     "abc",
		Mode:          "turbo",
		StartTime:     start,
		Duration:      90 * time.Second,
		Notifications: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"secret":        "mysecret",
		"filename":      "tormentor_20260101_120000_abc.json.gz",
		"session":       "abc",
		"mode":          "turbo",
		"startTime":     "2026-01-01T12:00:00Z",
		"duration":      "90.0",
		"notifications": "3",
	}, got.fields)
	assert.Equal(t, "test content", got.file)
}

func TestUpload_FileNotFound(t *testing.T) {
	err := New("http://localhost:5000", "secret").Upload(context.Background(), "/nonexistent/file.json.gz", UploadMetadata{})
	assert.Error(t, err)
}

func TestUpload_ServerError(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusForbidden, &got)

	err := New(server.URL, "wrong").Upload(context.Background(), writeExport(t, "x"), UploadMetadata{})
	assert.ErrorContains(t, err, "status 403")
}

// exportingNop pretends to write path at match end.
type exportingNop struct {
	storage.Nop
	path  string
	ended int
}

func (e *exportingNop) EndMatch() error          { e.ended++; return nil }
func (e *exportingNop) ExportedFilePath() string { return e.path }

func TestUploader_UploadsAfterExport(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusOK, &got)
	inner := &exportingNop{path: writeExport(t, "{}")}

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	u := NewUploader(inner, New(server.URL, "s"), zerolog.Nop())
	u.now = func() time.Time { return start.Add(20 * time.Minute) }

	require.NoError(t, u.StartMatch(&core.Match{SessionID: "abc", Mode: core.GameModeTurbo, StartTime: start}))
	require.NoError(t, u.RecordNotification(&core.NotificationEvent{SpawnerID: 1}))
	require.NoError(t, u.RecordNotification(&core.NotificationEvent{SpawnerID: 2}))
	require.NoError(t, u.EndMatch())

	assert.Equal(t, 1, inner.ended)
	assert.Equal(t, "abc", got.fields["session"])
	assert.Equal(t, "1200.0", got.fields["duration"])
	assert.Equal(t, "2", got.fields["notifications"])
	assert.Equal(t, "{}", got.file)
}

func TestUploader_NoExportSkipsUpload(t *testing.T) {
	inner := &exportingNop{}
	u := NewUploader(inner, New("http://127.0.0.1:1", "s"), zerolog.Nop())

	require.NoError(t, u.StartMatch(&core.Match{SessionID: "abc"}))
	assert.NoError(t, u.EndMatch())
	assert.Equal(t, 1, inner.ended)
}

func TestUploader_FailureIsReported(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusBadGateway, &got)
	inner := &exportingNop{path: writeExport(t, "{}")}
	u := NewUploader(inner, New(server.URL, "s"), zerolog.Nop())

	require.NoError(t, u.StartMatch(&core.Match{SessionID: "abc"}))
	assert.ErrorContains(t, u.EndMatch(), "status 502")
	assert.FileExists(t, inner.path)
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/monjez/monjez/internal/config"
	"github.com/monjez/monjez/internal/filestorage"
	"github.com/monjez/monjez/internal/usecase"
)

// fakeFileService backs the routes with just the file-flow surface; the
// embedded Service panics on anything else.
type fakeFileService struct {
	Service

	local *filestorage.LocalStorage
	user  usecase.User
}

func (f *fakeFileService) GetUserByID(_ context.Context, id uuid.UUID) (usecase.User, error) {
	u := f.user
	u.ID = id
	return u, nil
}

func (f *fakeFileService) GetTempUploadURL(ctx context.Context, name string) (string, string, error) {
	return f.local.GetTempUploadURL(ctx, "u1-1700000000/"+name)
}

func newTestServer(t *testing.T) (*Server, *filestorage.LocalStorage) {
	t.Helper()

	local, err := filestorage.NewLocalStorage(t.TempDir(), "http://api.test")
	if err != nil {
		t.Fatal(err)
	}

	return &Server{
		server:    &fakeFileService{local: local, user: usecase.User{Role: usecase.UserRoleMember}},
		validator: validator.New(),
		local:     local,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, local
}

func asInternalClient(t *testing.T, req *http.Request) {
	t.Helper()
	t.Setenv(config.ENV_KEY_CLIENT_ID, "test-client")
	req.Header.Set(config.HEADER_KEY_X_CLIENT_ID, "test-client")
	req.Header.Set(config.HEADER_KEY_X_UID, uuid.NewString())
}

// The URL handed out for an upload must resolve against a registered
// route, slash-bearing object name included.
func TestLocalUploadRoundTrip(t *testing.T) {
	s, local := newTestServer(t)
	h := s.RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/upload-url?name=report.pdf", nil)
	asInternalClient(t, req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("upload-url status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}

	target, err := url.Parse(res.URL)
	if err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodPut, target.Path, strings.NewReader("file body"))
	asInternalClient(t, req)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("upload status = %d for %s, body %s", rec.Code, target.Path, rec.Body.String())
	}

	saved := filepath.Join(filepath.Dir(local.PublicRoot()), "tmp", filepath.FromSlash(res.Name))
	body, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("uploaded file not found: %v", err)
	}
	if string(body) != "file body" {
		t.Errorf("uploaded content = %q", body)
	}
}

func TestUploadRejectsPathTraversal(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.RegisterRoutes()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/files/temp/..%2F..%2Fetc%2Fpasswd", strings.NewReader("x"))
	asInternalClient(t, req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// The URL GetPresignedURL advertises must be exactly where the static
// mount serves the file.
func TestPublicFileRoundTrip(t *testing.T) {
	s, local := newTestServer(t)
	h := s.RegisterRoutes()

	dir := filepath.Join(local.PublicRoot(), "updates", "up1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("pdf bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fileURL, err := local.GetPresignedURL(context.Background(), "updates/up1/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	target, err := url.Parse(fileURL)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, target.Path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d for %s", rec.Code, target.Path)
	}
	if rec.Body.String() != "pdf bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStreamNotificationsRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

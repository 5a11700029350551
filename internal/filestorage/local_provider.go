package filestorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files under a root directory on the API host and
// serves them through the API itself. Intended for single-node and
// development deployments; production uses MinIO.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	for _, dir := range []string{filepath.Join(root, "tmp"), filepath.Join(root, "public")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

func (f *LocalStorage) GetPublicURL(_ context.Context) (string, error) {
	return f.baseURL + "/files", nil
}

// GetTempUploadURL points the client at the API's own upload endpoint;
// there is no presigning for local storage, auth happens on the route.
// Object names contain slashes, so the route binds them with a wildcard.
func (f *LocalStorage) GetTempUploadURL(_ context.Context, name string) (string, string, error) {
	return f.baseURL + "/api/v1/files/temp/" + escapePath(name), name, nil
}

func (f *LocalStorage) MoveTempFilePublic(_ context.Context, source string, dest string) error {
	var (
		src = filepath.Join(f.root, "tmp", filepath.FromSlash(source))
		dst = filepath.Join(f.root, "public", filepath.FromSlash(dest), filepath.Base(source))
	)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

func (f *LocalStorage) GetPresignedURL(_ context.Context, path string) (string, error) {
	return f.baseURL + "/files/" + escapePath(path), nil
}

// escapePath escapes each path segment while keeping the separators, so
// the result stays a routable URL path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// SaveTemp streams an uploaded body into the temp area. Used by the
// API's local upload handler.
func (f *LocalStorage) SaveTemp(name string, r io.Reader) (int64, error) {
	dst := filepath.Join(f.root, "tmp", filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	file, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return io.Copy(file, r)
}

// PublicRoot is the directory the API serves at /files.
func (f *LocalStorage) PublicRoot() string {
	return filepath.Join(f.root, "public")
}

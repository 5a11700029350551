package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageURLsMatchServedPaths(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir(), "http://api.test")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// The public root is mounted at /files, so every advertised URL
	// must live directly under that prefix.
	publicURL, err := local.GetPublicURL(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if publicURL != "http://api.test/files" {
		t.Errorf("public URL = %q, want %q", publicURL, "http://api.test/files")
	}

	fileURL, err := local.GetPresignedURL(ctx, "updates/u1/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if fileURL != "http://api.test/files/updates/u1/report.pdf" {
		t.Errorf("presigned URL = %q, want path under /files/", fileURL)
	}

	uploadURL, name, err := local.GetTempUploadURL(ctx, "u1-1700000000/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if name != "u1-1700000000/report.pdf" {
		t.Errorf("object name = %q, want the input name", name)
	}
	if !strings.HasPrefix(uploadURL, "http://api.test/api/v1/files/temp/") {
		t.Errorf("upload URL = %q, want path under /api/v1/files/temp/", uploadURL)
	}
	// Slashes in the object name stay routable path separators.
	if strings.Contains(uploadURL, "%2F") {
		t.Errorf("upload URL %q escapes the path separator", uploadURL)
	}
}

func TestLocalStorageEscapesSegments(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir(), "http://api.test")
	if err != nil {
		t.Fatal(err)
	}

	fileURL, err := local.GetPresignedURL(context.Background(), "updates/u1/monthly report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if want := "http://api.test/files/updates/u1/monthly%20report.pdf"; fileURL != want {
		t.Errorf("presigned URL = %q, want %q", fileURL, want)
	}
}

func TestLocalStorageSaveAndMove(t *testing.T) {
	root := t.TempDir()
	local, err := NewLocalStorage(root, "http://api.test")
	if err != nil {
		t.Fatal(err)
	}

	size, err := local.SaveTemp("u1-1700000000/report.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len("content")) {
		t.Errorf("size = %d, want %d", size, len("content"))
	}

	if err := local.MoveTempFilePublic(context.Background(), "u1-1700000000/report.pdf", "updates/up1"); err != nil {
		t.Fatal(err)
	}

	moved := filepath.Join(local.PublicRoot(), "updates", "up1", "report.pdf")
	if _, err := os.Stat(moved); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
}

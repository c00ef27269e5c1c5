package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesFile(t *testing.T) {
	payload := []byte("fake video bytes")
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
			t.Errorf("missing browser user agent, got %q", got)
		}
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Save(context.Background(), srv.Client(), srv.URL+"/clip.mp4", "my video: a/test", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("saved outside output dir: %s", path)
	}
	if !strings.HasSuffix(path, ".mp4") {
		t.Errorf("expected .mp4 extension, got %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("saved content mismatch")
	}
}

func TestSaveRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	if _, err := Save(context.Background(), srv.Client(), srv.URL+"/clip.mp4", "clip", dir); err == nil {
		t.Fatal("expected error for 403 response")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, found %d", len(entries))
	}
}

func TestSaveRejectsPlainHTTP(t *testing.T) {
	dir := t.TempDir()
	if _, err := Save(context.Background(), http.DefaultClient, "http://example.com/clip.mp4", "clip", dir); err == nil {
		t.Fatal("expected error for non-https URL")
	}
}

func TestExtensionFor(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/video/abc123?mime_type=video_mp4", ".mp4"},
		{"https://cdn.example.com/img/photo.jpeg?x=1", ".jpeg"},
		{"https://cdn.example.com/img/photo.webp", ".webp"},
		{"https://cdn.example.com/audio/track.mp3#t=0", ".mp3"},
		{"https://cdn.example.com/video/clip.badext", ".mp4"},
	}
	for _, tc := range cases {
		if got := extensionFor(tc.url); got != tc.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tikrip/internal/history"
	"tikrip/internal/media"
)

// stubExtractor returns a fixed result and remembers the URL it was
// asked to extract.
type stubExtractor struct {
	result media.Result
	called string
}

func (s *stubExtractor) Extract(_ context.Context, url string) media.Result {
	s.called = url
	return s.result
}

type stubRecorder struct {
	entries []history.Entry
}

func (s *stubRecorder) Record(e history.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func successResult() media.Result {
	return media.Success(&media.Post{
		Type: media.Video,
		ID:   "7301234567890123456",
		Desc: "a post",
		Author: media.Author{
			Username: "trailrunner",
		},
		Video: &media.VideoMedia{},
	})
}

func newTestServer(result media.Result) (*Server, *stubExtractor, *stubRecorder) {
	ext := &stubExtractor{result: result}
	rec := &stubRecorder{}
	return New(ext, rec, io.Discard), ext, rec
}

func TestExtractGet(t *testing.T) {
	srv, ext, rec := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodGet, "/api/extract?url=https://www.tiktok.com/@u/video/7301234567890123456", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	if !strings.Contains(ext.called, "tiktok.com") {
		t.Errorf("extractor called with %q", ext.called)
	}

	var res media.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not a result envelope: %v", err)
	}
	if res.Status != media.StatusSuccess || res.Data == nil {
		t.Errorf("envelope = %+v", res)
	}

	if len(rec.entries) != 1 || rec.entries[0].PostID != "7301234567890123456" {
		t.Errorf("history entries = %+v", rec.entries)
	}
}

func TestExtractPost(t *testing.T) {
	srv, ext, _ := newTestServer(successResult())

	body := strings.NewReader(`{"url":"https://www.tiktok.com/@u/video/7301234567890123456"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	if ext.called == "" {
		t.Error("extractor was not invoked")
	}
}

func TestExtractMissingURL(t *testing.T) {
	srv, ext, _ := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodGet, "/api/extract", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ext.called != "" {
		t.Error("core was invoked despite missing url")
	}
}

func TestExtractNonTikTokURL(t *testing.T) {
	srv, ext, _ := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodGet, "/api/extract?url=https://example.com/video/1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ext.called != "" {
		t.Error("core was invoked despite non-TikTok url")
	}
}

func TestExtractErrorEnvelope(t *testing.T) {
	srv, _, rec := newTestServer(media.Failure("All extraction methods failed. The post may be private, deleted, or region-locked."))

	req := httptest.NewRequest(http.MethodGet, "/api/extract?url=https://www.tiktok.com/@u/video/1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var res media.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not a result envelope: %v", err)
	}
	if res.Status != media.StatusError || res.Message == "" {
		t.Errorf("envelope = %+v", res)
	}
	if len(rec.entries) != 0 {
		t.Error("failed extraction was recorded in history")
	}
}

func TestExtractMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodDelete, "/api/extract", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, ext, _ := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodOptions, "/api/extract", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
	if ext.called != "" {
		t.Error("core was invoked on preflight")
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(successResult())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
}

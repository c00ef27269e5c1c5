package tiktok

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"tikrip/internal/media"
)

// roundTripFunc lets a test serve canned responses for the hardcoded
// upstream endpoints.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func clientWith(f roundTripFunc) *http.Client {
	return &http.Client{Transport: f}
}

func respond(status int, body []byte) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func blocked(t *testing.T, reason string) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request to %s: %s", r.URL, reason)
		return respond(http.StatusTeapot, nil)
	}
}

const testPostURL = "https://www.tiktok.com/@trailrunner/video/7301234567890123456"

func TestExtractInvalidURLMakesNoRequests(t *testing.T) {
	s := NewScraper()
	noNetwork := blocked(t, "invalid URLs must fail before any strategy runs")
	s.pageClient = clientWith(noNetwork)
	s.apiClient = clientWith(noNetwork)
	s.embedClient = clientWith(noNetwork)

	res := s.Extract(context.Background(), "https://example.com/not-tiktok")
	if res.Status != media.StatusError {
		t.Fatalf("status = %q, want error", res.Status)
	}
	if res.Message != "Invalid URL format" {
		t.Errorf("message = %q", res.Message)
	}
	if res.Data != nil {
		t.Error("error envelope carries data")
	}
}

func TestExtractPageStrategyShortCircuits(t *testing.T) {
	s := NewScraper()
	page := loadFixture(t, "page_universal.html")
	s.pageClient = clientWith(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, page)
	})
	s.apiClient = clientWith(blocked(t, "page succeeded, later strategies must not run"))
	s.embedClient = clientWith(blocked(t, "page succeeded, later strategies must not run"))

	res := s.Extract(context.Background(), testPostURL)
	if res.Status != media.StatusSuccess {
		t.Fatalf("status = %q (%s), want success", res.Status, res.Message)
	}
	if res.Data.ID != "7301234567890123456" {
		t.Errorf("ID = %q", res.Data.ID)
	}
	if res.Data.Type != media.Video {
		t.Errorf("Type = %q", res.Data.Type)
	}
}

func TestExtractFallsBackToAPI(t *testing.T) {
	s := NewScraper()
	feed := loadFixture(t, "api_feed.json")
	s.pageClient = clientWith(func(r *http.Request) (*http.Response, error) {
		// The page endpoint blocks the scrape.
		return respond(http.StatusForbidden, nil)
	})
	apiCalls := 0
	s.apiClient = clientWith(func(r *http.Request) (*http.Response, error) {
		apiCalls++
		if apiCalls == 1 {
			// First mirror is down; the strategy moves to the next.
			return respond(http.StatusBadGateway, nil)
		}
		return respond(http.StatusOK, feed)
	})
	s.embedClient = clientWith(blocked(t, "api succeeded, embed must not run"))

	res := s.Extract(context.Background(), testPostURL)
	if res.Status != media.StatusSuccess {
		t.Fatalf("status = %q (%s), want success via API fallback", res.Status, res.Message)
	}
	if apiCalls != 2 {
		t.Errorf("api mirror calls = %d, want 2", apiCalls)
	}
	if res.Data.Author.Username != "apiuser" {
		t.Errorf("author = %+v", res.Data.Author)
	}
}

func TestExtractFallsBackToEmbed(t *testing.T) {
	s := NewScraper()
	embed := loadFixture(t, "embed.html")
	s.pageClient = clientWith(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusForbidden, nil)
	})
	s.apiClient = clientWith(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, []byte(`{"aweme_list":[]}`))
	})
	s.embedClient = clientWith(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, embed)
	})

	res := s.Extract(context.Background(), testPostURL)
	if res.Status != media.StatusSuccess {
		t.Fatalf("status = %q (%s), want success via embed fallback", res.Status, res.Message)
	}
	if res.Data.Desc != "embed record" {
		t.Errorf("desc = %q", res.Data.Desc)
	}
}

func TestExtractAllStrategiesExhausted(t *testing.T) {
	s := NewScraper()
	fail := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusForbidden, []byte("upstream-specific diagnostic text"))
	})
	s.pageClient = clientWith(fail)
	s.apiClient = clientWith(fail)
	s.embedClient = clientWith(fail)

	res := s.Extract(context.Background(), testPostURL)
	if res.Status != media.StatusError {
		t.Fatalf("status = %q, want error", res.Status)
	}
	if !strings.HasPrefix(res.Message, "All extraction methods failed") {
		t.Errorf("message = %q, want the generic exhausted message", res.Message)
	}
	if strings.Contains(res.Message, "diagnostic") || strings.Contains(res.Message, "403") {
		t.Errorf("message leaks strategy diagnostics: %q", res.Message)
	}
}

func TestExtractShortLinkResolvesRedirect(t *testing.T) {
	s := NewScraper()
	page := loadFixture(t, "page_universal.html")
	s.pageClient = clientWith(func(r *http.Request) (*http.Response, error) {
		if r.URL.Host == "vm.tiktok.com" {
			resp, _ := respond(http.StatusFound, nil)
			resp.Header.Set("Location", testPostURL)
			return resp, nil
		}
		return respond(http.StatusOK, page)
	})
	s.apiClient = clientWith(blocked(t, "page succeeded, api must not run"))
	s.embedClient = clientWith(blocked(t, "page succeeded, api must not run"))

	res := s.Extract(context.Background(), "https://vm.tiktok.com/ZM6abcdef/")
	if res.Status != media.StatusSuccess {
		t.Fatalf("status = %q (%s), want success after redirect resolution", res.Status, res.Message)
	}
	if res.Data.ID != "7301234567890123456" {
		t.Errorf("ID = %q", res.Data.ID)
	}
}

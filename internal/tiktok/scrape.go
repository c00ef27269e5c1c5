// Package tiktok implements the extraction pipeline: identify the post
// behind a URL, try the web page, the mobile API, and the embed page in
// that order, and normalize whichever raw record came back into the
// canonical output contract.
package tiktok

import (
	"context"
	"log"
	"net/http"
	"time"

	"tikrip/internal/httputil"
	"tikrip/internal/media"
)

// User-visible messages. Individual strategy failures are never surfaced;
// clients only see one of these.
const (
	msgInvalidURL = "Invalid URL format"
	msgExhausted  = "All extraction methods failed. The post may be private, deleted, or region-locked."
	msgUnexpected = "Unexpected error during extraction"
)

// Per-strategy timeouts. Strategies run sequentially, so the worst-case
// request latency is their sum.
const (
	pageTimeout  = 15 * time.Second
	apiTimeout   = 10 * time.Second
	embedTimeout = 10 * time.Second
)

// strategy is one independent way of retrieving a raw item record. A nil
// item with a nil error means the endpoint answered but carried no post.
type strategy struct {
	name string
	run  func(ctx context.Context) (RawItem, error)
}

// Scraper runs the extraction pipeline. It holds only immutable
// configuration and pooled clients, so one Scraper serves concurrent
// requests.
type Scraper struct {
	pageClient  *http.Client
	apiClient   *http.Client
	embedClient *http.Client

	// Debug hook; nil disables. Wired to the CLI debug flag or the
	// server's logger.
	Logf func(format string, args ...any)
}

// NewScraper creates a scraper with one pooled client per endpoint class.
func NewScraper() *Scraper {
	return &Scraper{
		pageClient:  httputil.NewClient(pageTimeout),
		apiClient:   httputil.NewClient(apiTimeout),
		embedClient: httputil.NewClient(embedTimeout),
	}
}

func (s *Scraper) debugf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Extract runs the full pipeline for one URL. It never returns a Go
// error: the output is always a well-formed result envelope, and any
// panic inside the pipeline is mapped to a generic error envelope.
func (s *Scraper) Extract(ctx context.Context, rawURL string) (result media.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered panic during extraction: %v", r)
			result = media.Failure(msgUnexpected)
		}
	}()

	id, err := ParsePostID(rawURL)
	if err != nil {
		return media.Failure(msgInvalidURL)
	}

	if id.Pending {
		id = s.resolvePending(ctx, &rawURL)
	}

	for _, st := range s.strategies(rawURL, id) {
		raw, err := st.run(ctx)
		if err != nil {
			s.debugf("strategy %s failed: %v", st.name, err)
			continue
		}
		if raw == nil {
			s.debugf("strategy %s returned no item", st.name)
			continue
		}

		post, err := Assemble(raw)
		if err != nil {
			s.debugf("strategy %s produced an unusable record: %v", st.name, err)
			continue
		}

		s.debugf("strategy %s succeeded for post %s", st.name, post.ID)
		return media.Success(post)
	}

	return media.Failure(msgExhausted)
}

// resolvePending follows a short link's redirect chain and re-runs the
// pattern matchers on the final URL. On failure the ID stays pending and
// only the page strategy (which takes the original URL) will run.
func (s *Scraper) resolvePending(ctx context.Context, rawURL *string) PostID {
	resolved, err := httputil.ResolveRedirects(ctx, s.pageClient, *rawURL)
	if err != nil {
		s.debugf("short link resolution failed: %v", err)
		return PostID{Pending: true}
	}

	id, err := ParsePostID(resolved)
	if err != nil || id.Pending {
		s.debugf("resolved URL %s still has no extractable ID", resolved)
		return PostID{Pending: true}
	}

	*rawURL = resolved
	s.debugf("short link resolved to post %s", id.ID)
	return id
}

// strategies builds the ordered attempt list: the page fetch carries the
// richest data but is most likely to be blocked, the API is lean but
// stable, the embed page is a last resort with reduced fields. A pending
// ID is unusable against the API and embed endpoints, so those two are
// only listed when a real ID exists.
func (s *Scraper) strategies(pageURL string, id PostID) []strategy {
	list := []strategy{
		{name: "page", run: func(ctx context.Context) (RawItem, error) {
			return fetchPage(ctx, s.pageClient, pageURL, id.ID)
		}},
	}

	if !id.Pending && id.ID != "" {
		list = append(list,
			strategy{name: "api", run: func(ctx context.Context) (RawItem, error) {
				return fetchAPI(ctx, s.apiClient, id.ID)
			}},
			strategy{name: "embed", run: func(ctx context.Context) (RawItem, error) {
				return fetchEmbed(ctx, s.embedClient, id.ID)
			}},
		)
	}

	return list
}

// Package httputil provides the shared outbound HTTP client, the header
// profiles used to mimic legitimate clients of each upstream endpoint
// class, and input sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxRedirects bounds every outbound redirect chain.
const maxRedirects = 5

// maxBodySize bounds how much of an upstream response is read (10MB).
const maxBodySize = 10 * 1024 * 1024

// Profile is a named set of request headers mimicking one client class.
type Profile struct {
	UserAgent string
	Accept    string
	Headers   map[string]string
}

// Header profiles per upstream endpoint class. Immutable after init.
var (
	// Browser mimics a desktop browser hitting the web page.
	Browser = Profile{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			"Sec-Fetch-Dest":  "document",
			"Sec-Fetch-Mode":  "navigate",
			"Sec-Fetch-Site":  "none",
		},
	}

	// MobileApp mimics the official mobile application calling the API.
	MobileApp = Profile{
		UserAgent: "com.ss.android.ugc.trill/494+Mozilla/5.0+(Linux;+Android+12;+2112123G+Build/SKQ1.211006.001;+wv)+AppleWebKit/537.36+(KHTML,+like+Gecko)+Version/4.0+Chrome/107.0.5304.105+Mobile+Safari/537.36",
		Accept:    "application/json",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		},
	}

	// Embed mimics a third-party site loading the embed player.
	Embed = Profile{
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.5",
			"Referer":         "https://www.tiktok.com/",
		},
	}
)

// NewClient creates a hardened HTTP client with a pooled transport and a
// bounded redirect count. Timeout is per call class (10-15s).
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// Apply sets the profile's headers on a request.
func (p Profile) Apply(req *http.Request) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
}

// Get performs a GET with the given profile and returns the body.
// Non-2xx responses are errors.
func Get(ctx context.Context, client *http.Client, url string, profile Profile) ([]byte, error) {
	if err := ValidateURL(url); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	profile.Apply(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return body, nil
}

// ResolveRedirects follows the redirect chain of a URL without reading
// the final body and returns the URL the chain settles on. Used to turn
// shortened share links into their canonical form. The final URL is
// captured in the redirect callback; Response.Request is optional for a
// RoundTripper, so it is only used when present.
func ResolveRedirects(ctx context.Context, client *http.Client, url string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	final := url
	hops := &http.Client{
		Timeout:   client.Timeout,
		Transport: client.Transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			final = req.URL.String()
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	Browser.Apply(req)

	resp, err := hops.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolving redirect: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return final, nil
}

package tiktok

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL means no known URL pattern matched and the host is not a
// known short-link domain.
var ErrInvalidURL = errors.New("unrecognized TikTok URL")

// linkPatterns are the known URL shapes, tried in order. The first
// capture group of the first match is the post ID.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`tiktok\.com/@[\w.\-]+/video/(\d+)`),
	regexp.MustCompile(`tiktok\.com/@[\w.\-]+/photo/(\d+)`),
	regexp.MustCompile(`tiktok\.com/video/(\d+)`),
	regexp.MustCompile(`tiktok\.com/v/(\d+)`),
	regexp.MustCompile(`(?i)(?:aweme_id=|item_id=)(\d+)`),
}

// shortLinkHosts are share-link domains that only resolve via redirect.
var shortLinkHosts = map[string]bool{
	"vm.tiktok.com": true,
	"vt.tiktok.com": true,
}

// PostID is the identifier extracted from an input URL. When Pending is
// set the URL is a short link whose ID is only knowable after following
// its redirect; a pending ID is not usable against the API or embed
// endpoints.
type PostID struct {
	ID      string
	Pending bool
}

// ParsePostID extracts the post identifier from a TikTok URL.
func ParsePostID(rawURL string) (PostID, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return PostID{}, ErrInvalidURL
	}

	for _, pat := range linkPatterns {
		if m := pat.FindStringSubmatch(rawURL); len(m) == 2 {
			return PostID{ID: m[1]}, nil
		}
	}

	if IsShortLink(rawURL) {
		return PostID{Pending: true}, nil
	}

	return PostID{}, ErrInvalidURL
}

// IsShortLink reports whether the URL belongs to a known short-link host
// or uses the /t/ share path.
func IsShortLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if shortLinkHosts[host] {
		return true
	}
	if strings.HasSuffix(host, "tiktok.com") && strings.HasPrefix(u.Path, "/t/") {
		return true
	}
	return false
}

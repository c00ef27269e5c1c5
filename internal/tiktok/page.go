package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"tikrip/internal/httputil"
)

// pageContainers are the embedded-data script elements a post page may
// carry, in priority order: the current rehydration payload, the legacy
// SSR state, and the framework page-props payload.
var pageContainers = []struct {
	selector string
	locate   func(doc RawItem, postID string) RawItem
}{
	{
		selector: `script#__UNIVERSAL_DATA_FOR_REHYDRATION__`,
		locate: func(doc RawItem, _ string) RawItem {
			// The scope map keys the detail payload under the literal
			// "webapp.video-detail", dot included, so a dotted-path walk
			// cannot reach it.
			scope := doc.sub("__DEFAULT_SCOPE__")
			detail, ok := scope["webapp.video-detail"].(map[string]any)
			if !ok {
				return nil
			}
			return RawItem(detail).sub("itemInfo.itemStruct")
		},
	},
	{
		selector: `script#SIGI_STATE`,
		locate:   locateSigiItem,
	},
	{
		selector: `script#__NEXT_DATA__`,
		locate: func(doc RawItem, _ string) RawItem {
			return doc.sub("props.pageProps.itemInfo.itemStruct")
		},
	},
}

// fetchPage retrieves the post's web page with browser-like headers and
// scans it for the first embedded-data container whose nested item
// structure resolves. Returns nil when the page has none of the known
// containers or none of them parse.
func fetchPage(ctx context.Context, client *http.Client, pageURL, postID string) (RawItem, error) {
	body, err := httputil.Get(ctx, client, pageURL, httputil.Browser)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}

	for _, container := range pageContainers {
		text := doc.Find(container.selector).First().Text()
		if text == "" {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			continue
		}

		if item := container.locate(RawItem(payload), postID); item != nil {
			return item, nil
		}
	}

	return nil, nil
}

// locateSigiItem finds the post inside the legacy SIGI state, which keys
// its ItemModule map by post ID.
func locateSigiItem(doc RawItem, postID string) RawItem {
	module := doc.sub("ItemModule")
	if module == nil {
		return nil
	}
	if postID != "" {
		if item := module.sub(postID); item != nil {
			return item
		}
	}
	// Short-link extractions reach here without a known ID; the module
	// only ever holds the page's own post.
	for _, v := range module {
		if m, ok := v.(map[string]any); ok {
			return RawItem(m)
		}
	}
	return nil
}

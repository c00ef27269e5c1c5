package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"tikrip/internal/httputil"
)

const embedURLTemplate = "https://www.tiktok.com/embed/v2/%s"

// embedStatePatterns match the inline script assignments the embed page
// has carried across revisions, tried in order. The first capture group
// is the JSON payload.
var embedStatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)window\.__INIT_PROPS__\s*=\s*(\{.*?\})\s*</script>`),
	regexp.MustCompile(`(?s)<script id="__FRONTITY_CONNECT_STATE__" type="application/json">(\{.*?\})</script>`),
}

// embedItemPaths are where the item structure has been observed inside
// the embed state payload.
var embedItemPaths = []string{
	"itemInfo.itemStruct",
	"videoData.itemInfo.itemStruct",
	"source.data.videoData.itemInfo.itemStruct",
}

// fetchEmbed retrieves the embed page for the post, extracts the inline
// state assignment, and returns the nested item structure if present.
// The embed payload carries reduced fields; this is the last resort.
func fetchEmbed(ctx context.Context, client *http.Client, postID string) (RawItem, error) {
	if err := httputil.ValidateNumericID(postID); err != nil {
		return nil, fmt.Errorf("unusable post ID for embed fetch: %w", err)
	}

	body, err := httputil.Get(ctx, client, fmt.Sprintf(embedURLTemplate, postID), httputil.Embed)
	if err != nil {
		return nil, fmt.Errorf("fetching embed page: %w", err)
	}

	for _, pat := range embedStatePatterns {
		m := pat.FindSubmatch(body)
		if m == nil {
			continue
		}

		var state map[string]any
		if err := json.Unmarshal(m[1], &state); err != nil {
			continue
		}

		if item := locateEmbedItem(RawItem(state), postID); item != nil {
			return item, nil
		}
	}

	return nil, nil
}

// locateEmbedItem digs for the item structure, first at the known fixed
// paths and then under the per-route keys the embed state nests its
// payload in.
func locateEmbedItem(state RawItem, postID string) RawItem {
	for _, path := range embedItemPaths {
		if item := state.sub(path); item != nil {
			return item
		}
	}

	for _, v := range state {
		route, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for _, path := range embedItemPaths {
			if item := RawItem(route).sub(path); item != nil {
				return item
			}
		}
	}

	return nil
}

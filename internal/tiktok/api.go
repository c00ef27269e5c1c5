package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tikrip/internal/httputil"
)

// apiMirrors are the known mobile-API hosts, tried in order. The feed
// endpoint is unauthenticated and accepts any numeric post ID.
var apiMirrors = []string{
	"https://api16-normal-c-useast1a.tiktokv.com",
	"https://api19-normal-c-useast1a.tiktokv.com",
	"https://api22-normal-c-useast2a.tiktokv.com",
}

const apiFeedPath = "/aweme/v1/feed/?aweme_id=%s&version_code=262&app_name=musical_ly&channel=App&device_id=1234567890123456789&region=US&aid=1233"

// fetchAPI queries each mobile-API mirror for the post, stopping at the
// first that returns a non-empty item list. Returns nil when every
// mirror fails or comes back empty.
func fetchAPI(ctx context.Context, client *http.Client, postID string) (RawItem, error) {
	if err := httputil.ValidateNumericID(postID); err != nil {
		return nil, fmt.Errorf("unusable post ID for API fetch: %w", err)
	}

	for _, mirror := range apiMirrors {
		url := mirror + fmt.Sprintf(apiFeedPath, postID)

		body, err := httputil.Get(ctx, client, url, httputil.MobileApp)
		if err != nil {
			continue
		}

		var feed struct {
			AwemeList []map[string]any `json:"aweme_list"`
		}
		if err := json.Unmarshal(body, &feed); err != nil {
			continue
		}
		if len(feed.AwemeList) == 0 {
			continue
		}

		// The feed may pad the response with unrelated posts; prefer the
		// entry that actually matches the requested ID.
		for _, entry := range feed.AwemeList {
			if RawItem(entry).str("aweme_id") == postID {
				return RawItem(entry), nil
			}
		}
		return RawItem(feed.AwemeList[0]), nil
	}

	return nil, nil
}

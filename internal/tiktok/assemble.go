package tiktok

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tikrip/internal/format"
	"tikrip/internal/media"
)

// qualityRank orders variants for selection. Unlisted labels rank 0.
var qualityRank = map[string]int{
	"1080p": 4,
	"720p":  3,
	"540p":  2,
	"480p":  1,
}

// imagePostAwemeType is the aweme_type value the mobile API uses for
// image (slideshow) posts.
const imagePostAwemeType = 150

// Assemble maps a raw upstream record of unknown shape into the canonical
// post. Field resolution is first-non-empty-wins across a fixed alias
// list per field; absent fields default to zero values.
func Assemble(raw RawItem) (*media.Post, error) {
	id := raw.str("id", "aweme_id", "itemInfos.id")
	if id == "" {
		return nil, fmt.Errorf("raw record carries no post ID")
	}

	post := &media.Post{
		ID:   id,
		Desc: raw.str("desc", "description", "content", "itemInfos.text"),
		Thumbnail: raw.urlAt(
			"video.cover", "video.originCover", "video.origin_cover",
			"video.cover.url_list", "itemInfos.covers",
		),
		Author:     assembleAuthor(raw),
		Statistics: assembleStatistics(raw),
		Duration:   assembleDuration(raw),
		Region:     format.Region(raw.str("region", "locationCreated", "location_created")),
		CreatedAt:  formatCreatedAt(raw.num("createTime", "create_time", "itemInfos.createTime")),
		Music:      assembleMusic(raw),
	}

	if images := assembleImages(raw); images != nil {
		post.Type = media.Images
		post.Images = images
	} else {
		post.Type = media.Video
		post.Video = assembleVideo(raw)
	}

	return post, nil
}

func assembleAuthor(raw RawItem) media.Author {
	return media.Author{
		Name:     raw.str("author.nickname", "author.nickName", "authorInfos.nickName"),
		Username: raw.str("author.uniqueId", "author.unique_id", "authorInfos.uniqueId"),
		Avatar: raw.urlAt(
			"author.avatarLarger", "author.avatarThumb",
			"author.avatar_larger", "author.avatar_thumb",
			"author.avatar", "authorInfos.covers",
		),
		Verified: raw.boolean("author.verified", "authorInfos.verified"),
	}
}

func assembleStatistics(raw RawItem) media.Statistics {
	likes := raw.num("stats.diggCount", "statistics.diggCount", "statistics.digg_count", "diggCount", "digg_count")
	comments := raw.num("stats.commentCount", "statistics.commentCount", "statistics.comment_count", "commentCount", "comment_count")
	shares := raw.num("stats.shareCount", "statistics.shareCount", "statistics.share_count", "shareCount", "share_count")
	views := raw.num("stats.playCount", "statistics.playCount", "statistics.play_count", "playCount", "play_count")

	return media.Statistics{
		Likes:       format.Count(likes),
		Comments:    format.Count(comments),
		Shares:      format.Count(shares),
		Views:       format.Count(views),
		LikesRaw:    likes,
		CommentsRaw: comments,
		SharesRaw:   shares,
		ViewsRaw:    views,
	}
}

func assembleMusic(raw RawItem) media.Music {
	return media.Music{
		Title:  raw.str("music.title", "music_info.title", "musicInfos.musicName"),
		Author: raw.str("music.authorName", "music.author", "music_info.author", "musicInfos.authorName"),
		Cover: raw.urlAt(
			"music.coverLarge", "music.coverThumb",
			"music.cover_large", "music.cover_thumb", "music_info.cover",
		),
		URL: raw.urlAt(
			"music.playUrl", "music.play_url", "music_info.play", "musicInfos.playUrl",
		),
		Duration: raw.num("music.duration", "music_info.duration"),
	}
}

// assembleImages returns the image list for slideshow posts, nil for
// video posts. A post is an image post when an image container resolves
// or the record carries the image aweme_type flag.
func assembleImages(raw RawItem) []media.Image {
	entries := raw.list("imagePost.images", "image_post_info.images")
	if entries == nil && raw.num("aweme_type") != imagePostAwemeType {
		return nil
	}

	images := make([]media.Image, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		entry := RawItem(m)

		url := entry.urlAt("imageURL", "display_image", "urlList", "url")
		if url == "" {
			continue
		}

		images = append(images, media.Image{
			URL:    url,
			Width:  entry.num("imageWidth", "display_image.width", "width"),
			Height: entry.num("imageHeight", "display_image.height", "height"),
		})
	}

	// aweme_type said images but none resolved: keep the images variant
	// with an empty list rather than fabricating a video record.
	return images
}

// assembleVideo collects quality candidates from the no-watermark play
// address and the bitrate ladder, and watermarked candidates from the
// distinct download address. The two pools never mix.
func assembleVideo(raw RawItem) *media.VideoMedia {
	width := raw.num("video.width")
	height := raw.num("video.height")

	var pool []media.Variant

	if url := raw.urlAt("video.playAddr", "video.play_addr"); url != "" {
		pool = append(pool, variant(
			url,
			qualityLabel(width, height),
			raw.num("video.size", "video.play_addr.data_size", "video.dataSize"),
			width, height,
			raw.num("video.bitrate", "video.bit_rate_audio"),
		))
	}

	for _, e := range raw.list("video.bitrateInfo", "video.bitrate_info", "video.bit_rate") {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		entry := RawItem(m)

		url := entry.urlAt("PlayAddr", "play_addr")
		if url == "" {
			continue
		}

		w := entry.num("PlayAddr.Width", "play_addr.width")
		h := entry.num("PlayAddr.Height", "play_addr.height")
		pool = append(pool, variant(
			url,
			gearQuality(entry.str("GearName", "gear_name"), w, h),
			entry.num("PlayAddr.DataSize", "play_addr.data_size"),
			w, h,
			entry.num("Bitrate", "bit_rate"),
		))
	}

	noWatermark := sortByQuality(dedupeByURL(pool))

	var withWatermark []media.Variant
	if url := raw.urlAt("video.downloadAddr", "video.download_addr"); url != "" {
		withWatermark = append(withWatermark, variant(
			url,
			qualityLabel(width, height),
			raw.num("video.download_addr.data_size"),
			width, height,
			0,
		))
	}

	return &media.VideoMedia{
		NoWatermark:   noWatermark,
		WithWatermark: withWatermark,
		HD:            selectHD(noWatermark),
	}
}

func variant(url, quality string, size, width, height, bitrate int64) media.Variant {
	return media.Variant{
		URL:       url,
		Quality:   quality,
		Size:      format.Bytes(size),
		SizeBytes: size,
		Width:     width,
		Height:    height,
		Bitrate:   bitrate,
	}
}

// qualityLabel derives a display quality from frame dimensions. Labels
// follow the smaller dimension so portrait and landscape rank alike.
func qualityLabel(width, height int64) string {
	d := height
	if width > 0 && (d == 0 || width < d) {
		d = width
	}
	if d <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dp", d)
}

// gearQuality reads the resolution out of a bitrate-ladder gear name
// (e.g. "normal_720_0"), falling back to the frame dimensions.
func gearQuality(gear string, width, height int64) string {
	for _, q := range []string{"1080", "720", "540", "480"} {
		if strings.Contains(gear, q) {
			return q + "p"
		}
	}
	return qualityLabel(width, height)
}

// dedupeByURL drops repeated URLs, preserving first occurrence.
func dedupeByURL(pool []media.Variant) []media.Variant {
	seen := make(map[string]bool, len(pool))
	out := pool[:0]
	for _, v := range pool {
		if seen[v.URL] {
			continue
		}
		seen[v.URL] = true
		out = append(out, v)
	}
	return out
}

// sortByQuality orders variants by the fixed rank table, descending.
// The sort is stable so same-rank entries keep upstream order.
func sortByQuality(pool []media.Variant) []media.Variant {
	sort.SliceStable(pool, func(i, j int) bool {
		return qualityRank[pool[i].Quality] > qualityRank[pool[j].Quality]
	})
	return pool
}

// selectHD picks the first variant labeled 720 or 1080, then the first
// variant overall, then nothing.
func selectHD(pool []media.Variant) *string {
	for _, v := range pool {
		if strings.Contains(v.Quality, "720") || strings.Contains(v.Quality, "1080") {
			url := v.URL
			return &url
		}
	}
	if len(pool) > 0 {
		url := pool[0].URL
		return &url
	}
	return nil
}

// assembleDuration converts the duration to seconds. The web and embed
// containers report seconds; the mobile API, whose records key the post
// ID as aweme_id, reports milliseconds.
func assembleDuration(raw RawItem) int64 {
	d := raw.num("video.duration", "duration")
	if _, mobile := raw["aweme_id"]; mobile {
		return d / 1000
	}
	return d
}

// formatCreatedAt renders an epoch-seconds timestamp as RFC 3339 UTC;
// absent timestamps render empty rather than the epoch.
func formatCreatedAt(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}

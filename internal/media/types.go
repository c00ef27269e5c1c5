// Package media defines the canonical output contract shared by the
// extraction pipeline, the CLI, and the HTTP server.
package media

// PostType distinguishes video posts from image (slideshow) posts.
type PostType string

const (
	Video  PostType = "video"
	Images PostType = "images"
)

// Author describes the account that published a post.
type Author struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Verified bool   `json:"verified"`
}

// Statistics carries engagement counts in both display and raw form.
type Statistics struct {
	Likes       string `json:"likes"`
	Comments    string `json:"comments"`
	Shares      string `json:"shares"`
	Views       string `json:"views"`
	LikesRaw    int64  `json:"likesRaw"`
	CommentsRaw int64  `json:"commentsRaw"`
	SharesRaw   int64  `json:"sharesRaw"`
	ViewsRaw    int64  `json:"viewsRaw"`
}

// Music describes the soundtrack attached to a post.
type Music struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Cover    string `json:"cover"`
	URL      string `json:"url"`
	Duration int64  `json:"duration"`
}

// Variant is a single downloadable rendition of a video.
type Variant struct {
	URL       string `json:"url"`
	Quality   string `json:"quality"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Bitrate   int64  `json:"bitrate"`
}

// VideoMedia groups video renditions by watermark status.
// NoWatermark is de-duplicated by URL and sorted best quality first.
type VideoMedia struct {
	NoWatermark   []Variant `json:"noWatermark"`
	WithWatermark []Variant `json:"withWatermark"`
	HD            *string   `json:"hd"`
}

// Image is one entry of an image post.
type Image struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// Post is the canonical record produced by the assembler. Exactly one of
// Video/Images is set, selected by Type.
type Post struct {
	Type       PostType    `json:"type"`
	ID         string      `json:"id"`
	Desc       string      `json:"desc"`
	Thumbnail  string      `json:"thumbnail"`
	Author     Author      `json:"author"`
	Statistics Statistics  `json:"statistics"`
	Duration   int64       `json:"duration"`
	Region     string      `json:"region"`
	CreatedAt  string      `json:"createdAt"`
	Music      Music       `json:"music"`
	Video      *VideoMedia `json:"video,omitempty"`
	Images     []Image     `json:"images,omitempty"`
}

// Result is the envelope returned to every caller: either a success
// carrying a Post, or an error carrying a human-readable message.
type Result struct {
	Status  string `json:"status"`
	Data    *Post  `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success wraps a post in a success envelope.
func Success(p *Post) Result {
	return Result{Status: StatusSuccess, Data: p}
}

// Failure wraps a message in an error envelope.
func Failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}

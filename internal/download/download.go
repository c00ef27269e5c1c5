// Package download saves an extracted media variant to a local file.
// Output paths are validated against directory traversal before writing.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"tikrip/internal/httputil"
)

// Save fetches url into outputDir under a sanitized name derived from
// title, returning the final path. Partial files are removed on failure.
func Save(ctx context.Context, client *http.Client, url, title, outputDir string) (string, error) {
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := httputil.SanitizeFilename(title) + extensionFor(url)
	outputPath, err := httputil.SafeDownloadPath(absDir, filename)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	if err := httputil.ValidateURL(url); err != nil {
		return "", fmt.Errorf("invalid media URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httputil.Browser.Apply(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching media", resp.StatusCode)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("writing media: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("closing output file: %w", err)
	}

	return outputPath, nil
}

// extensionFor guesses the file extension from the media URL path,
// defaulting to .mp4 for the video CDN's extensionless URLs.
func extensionFor(url string) string {
	path := url
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp4", ".webm", ".mov", ".jpeg", ".jpg", ".png", ".webp", ".mp3", ".m4a":
		return ext
	default:
		return ".mp4"
	}
}

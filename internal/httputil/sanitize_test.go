package httputil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.tiktok.com/@user/video/7312345678901234567",
		"https://vm.tiktok.com/ZM6abcdef/",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"http://www.tiktok.com/@user/video/1",
		"ftp://example.com/file",
		"://bad",
		"https://",
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestValidateNumericID(t *testing.T) {
	if err := ValidateNumericID("7312345678901234567"); err != nil {
		t.Errorf("numeric ID rejected: %v", err)
	}

	bad := []string{"", "abc123", "12 34", "../etc", strings.Repeat("9", 65)}
	for _, id := range bad {
		if err := ValidateNumericID(id); err == nil {
			t.Errorf("ValidateNumericID(%q) = nil, want error", id)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"normal name", "normal name"},
		{"../../etc/passwd", "passwd"},
		{"a:b*c?d", "a_b_c_d"},
		{"..", "untitled"},
		{"", "untitled"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSafeDownloadPath(t *testing.T) {
	dir := t.TempDir()

	p, err := SafeDownloadPath(dir, "clip.mp4")
	if err != nil {
		t.Fatalf("SafeDownloadPath: %v", err)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("path %q not inside %q", p, dir)
	}

	// Traversal attempts are reduced to base names, never escapes.
	p, err = SafeDownloadPath(dir, "../../escape.mp4")
	if err != nil {
		t.Fatalf("SafeDownloadPath traversal: %v", err)
	}
	if !strings.HasPrefix(p, dir+string(filepath.Separator)) {
		t.Errorf("traversal escaped the download dir: %q", p)
	}
}

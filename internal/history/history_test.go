package history

import (
	"path/filepath"
	"testing"
	"time"

	"tikrip/internal/media"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Unix(1699920000, 0)
	entries := []Entry{
		{PostID: "1", URL: "https://www.tiktok.com/@a/video/1", Type: media.Video, Author: "a", Description: "first", ExtractedAt: base},
		{PostID: "2", URL: "https://www.tiktok.com/@b/video/2", Type: media.Images, Author: "b", Description: "second", ExtractedAt: base.Add(time.Hour)},
	}
	for _, e := range entries {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(got))
	}

	// Newest first.
	if got[0].PostID != "2" || got[1].PostID != "1" {
		t.Errorf("order = [%s, %s], want [2, 1]", got[0].PostID, got[1].PostID)
	}
	if got[0].Type != media.Images {
		t.Errorf("Type = %q, want images", got[0].Type)
	}
	if got[1].Author != "a" || got[1].Description != "first" {
		t.Errorf("entry = %+v", got[1])
	}
}

func TestRecordUpsert(t *testing.T) {
	s := openTestStore(t)

	e := Entry{PostID: "1", URL: "https://example.com/1", Type: media.Video, Author: "a", Description: "old"}
	if err := s.Record(e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	e.Description = "new"
	if err := s.Record(e); err != nil {
		t.Fatalf("Record (update): %v", err)
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("duplicate post IDs were not merged: %d rows", len(got))
	}
	if got[0].Description != "new" {
		t.Errorf("Description = %q, want updated value", got[0].Description)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(Entry{PostID: "1", URL: "u", Type: media.Video}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent after Clear returned %d entries", len(got))
	}
}

package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	s, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommitAssignsIDAndServerTimestamp(t *testing.T) {
	s := newTestCatalog(t)
	serverTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return serverTime }

	rec := &VideoRecord{
		Title:      "First upload",
		UserID:     "u1",
		Channel:    "Tester",
		VideoURL:   "https://storage.example.com/videos/u1/1_a.mp4",
		Duration:   "1:05",
		UploadedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), // caller clock, must be ignored
	}

	id, err := s.Commit(context.Background(), rec)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if id == "" || rec.ID != id {
		t.Errorf("id = %q, rec.ID = %q", id, rec.ID)
	}
	if !rec.UploadedAt.Equal(serverTime) {
		t.Errorf("UploadedAt = %v, want server-assigned %v", rec.UploadedAt, serverTime)
	}

	got, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("committed record not found")
	}
	if got.Title != "First upload" || got.Views != 0 {
		t.Errorf("got = %+v", got)
	}
}

func TestListOrdersByPublicationDesc(t *testing.T) {
	s := newTestCatalog(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	ctx := context.Background()
	idA, err := s.Commit(ctx, &VideoRecord{Title: "A", UserID: "u", Channel: "c", VideoURL: "a"})
	if err != nil {
		t.Fatal(err)
	}
	clock = base.Add(time.Minute)
	idB, err := s.Commit(ctx, &VideoRecord{Title: "B", UserID: "u", Channel: "c", VideoURL: "b"})
	if err != nil {
		t.Fatal(err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("List returned %d records, want 2", len(records))
	}
	if records[0].ID != idB || records[1].ID != idA {
		t.Errorf("order = [%s %s], want newest first [%s %s]",
			records[0].ID, records[1].ID, idB, idA)
	}
}

func TestIncrementView(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()

	id, err := s.Commit(ctx, &VideoRecord{Title: "V", UserID: "u", Channel: "c", VideoURL: "v"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementView(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != 3 {
		t.Errorf("Views = %d, want 3", got.Views)
	}

	// unknown id is not an error, just a no-op
	if err := s.IncrementView(ctx, "missing"); err != nil {
		t.Errorf("IncrementView(missing) = %v", err)
	}
}

func TestChangesSignalCoalesces(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Commit(ctx, &VideoRecord{Title: "V", UserID: "u", Channel: "c", VideoURL: "v"}); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-s.Changes():
	default:
		t.Fatal("no change signal pending")
	}

	select {
	case <-s.Changes():
		t.Fatal("signals stacked instead of coalescing")
	default:
	}
}

func TestPlaybackPositionRoundTrip(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()

	id, err := s.Commit(ctx, &VideoRecord{Title: "V", UserID: "u", Channel: "c", VideoURL: "v"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPlaybackPosition(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("position before save = %+v, want nil", got)
	}

	if err := s.SavePlaybackPosition(ctx, &PlaybackPosition{VideoID: id, Position: 42, Duration: 120}); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePlaybackPosition(ctx, &PlaybackPosition{VideoID: id, Position: 55, Duration: 120}); err != nil {
		t.Fatal(err)
	}

	got, err = s.GetPlaybackPosition(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Position != 55 || got.Duration != 120 {
		t.Errorf("position = %+v, want latest save", got)
	}
}

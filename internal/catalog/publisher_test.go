package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/santoshbirajdar/streamsanto/internal/session"
)

func TestPublishValidation(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		user    session.User
		wantErr error
	}{
		{name: "emptyTitle", title: "", user: session.User{UserID: "u1"}, wantErr: ErrEmptyTitle},
		{name: "whitespaceTitle", title: "   ", user: session.User{UserID: "u1"}, wantErr: ErrEmptyTitle},
		{name: "noSession", title: "ok", user: session.User{}, wantErr: session.ErrNoSession},
		{name: "valid", title: "ok", user: session.User{UserID: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeCatalogStore()
			p := NewPublisher(store, zerolog.Nop())

			id, err := p.Publish(context.Background(), "https://cdn/v.mp4", tt.user, Form{Title: tt.title})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Publish error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(store.records) != 0 {
					t.Error("failed publish still committed a record")
				}
				return
			}
			if id == "" {
				t.Error("no id returned")
			}
		})
	}
}

func TestPublishBuildsRecord(t *testing.T) {
	store := newFakeCatalogStore()
	p := NewPublisher(store, zerolog.Nop())

	user := session.User{UserID: "u1", DisplayName: "Creator", AvatarURL: "https://a/x.svg"}
	form := Form{
		Title:       "  My Video  ",
		Description: "about things",
		Duration:    "3:21",
	}

	id, err := p.Publish(context.Background(), "https://cdn/v.mp4", user, form)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := store.Get(context.Background(), id)
	if err != nil || rec == nil {
		t.Fatalf("record not committed: %v", err)
	}

	if rec.Title != "My Video" {
		t.Errorf("Title = %q, want trimmed", rec.Title)
	}
	if rec.Views != 0 {
		t.Errorf("Views = %d, want 0", rec.Views)
	}
	if rec.Channel != "Creator" || rec.Avatar != "https://a/x.svg" || rec.UserID != "u1" {
		t.Errorf("identity fields = %+v", rec)
	}
	if rec.VideoURL != "https://cdn/v.mp4" || rec.Duration != "3:21" {
		t.Errorf("media fields = %+v", rec)
	}
	if rec.UploadedAt.IsZero() {
		t.Error("UploadedAt not assigned by store")
	}
}

func TestPublishDefaults(t *testing.T) {
	store := newFakeCatalogStore()
	p := NewPublisher(store, zerolog.Nop())

	id, err := p.Publish(context.Background(), "https://cdn/v.mp4",
		session.User{UserID: "u1"}, Form{Title: "t"})
	if err != nil {
		t.Fatal(err)
	}

	rec, _ := store.Get(context.Background(), id)
	if rec.Thumbnail != DefaultThumbnail {
		t.Errorf("Thumbnail = %q, want default", rec.Thumbnail)
	}
	if rec.Duration != "0:00" {
		t.Errorf("Duration = %q, want 0:00", rec.Duration)
	}
	if rec.Channel != "Anonymous Creator" {
		t.Errorf("Channel = %q, want anonymous fallback", rec.Channel)
	}
	if rec.Avatar == "" {
		t.Error("Avatar empty, want dicebear fallback")
	}
}

func TestPublishTwiceCreatesTwoRecords(t *testing.T) {
	// the publisher itself is not idempotent; the upload pipeline's claim
	// is what prevents double publishes
	store := newFakeCatalogStore()
	p := NewPublisher(store, zerolog.Nop())
	user := session.User{UserID: "u1"}

	id1, err := p.Publish(context.Background(), "https://cdn/v.mp4", user, Form{Title: "t"})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := p.Publish(context.Background(), "https://cdn/v.mp4", user, Form{Title: "t"})
	if err != nil {
		t.Fatal(err)
	}

	if id1 == id2 {
		t.Error("expected two distinct records")
	}
	if len(store.records) != 2 {
		t.Errorf("records = %d, want 2", len(store.records))
	}
}

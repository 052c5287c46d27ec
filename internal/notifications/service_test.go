package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tonearm/internal/config"
	"tonearm/internal/notifications"
	"tonearm/internal/nowplaying"
)

type captured struct {
	title   string
	message string
	tags    string
}

func newCapture(t *testing.T) (*config.Config, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:   r.Header.Get("Title"),
			message: string(body),
			tags:    r.Header.Get("Tags"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.TrackChanges = true
	cfg.Notifications.Playback = true
	cfg.Notifications.Errors = true
	return cfg, &got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := &config.Config{}
	svc := notifications.NewService(cfg)
	if err := svc.NotifyTrackStarted(context.Background(), nowplaying.Track{Title: "Example"}); err != nil {
		t.Fatalf("noop notifier returned %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop test notification returned %v", err)
	}
}

func TestNtfyServiceFormatsTrack(t *testing.T) {
	cfg, got := newCapture(t)
	svc := notifications.NewService(cfg)

	track := nowplaying.Track{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"}
	if err := svc.NotifyTrackStarted(context.Background(), track); err != nil {
		t.Fatalf("NotifyTrackStarted: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("received %d requests, want 1", len(*got))
	}
	req := (*got)[0]
	if req.title != "Tonearm - Now Playing" {
		t.Fatalf("title = %q", req.title)
	}
	if want := "Miles Davis - So What\nAlbum: Kind of Blue"; req.message != want {
		t.Fatalf("message = %q, want %q", req.message, want)
	}
	if req.tags != "tonearm,track" {
		t.Fatalf("tags = %q", req.tags)
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	cfg, got := newCapture(t)
	cfg.Notifications.TrackChanges = false
	cfg.Notifications.Playback = false
	svc := notifications.NewService(cfg)

	ctx := context.Background()
	if err := svc.NotifyTrackStarted(ctx, nowplaying.Track{Title: "Quiet"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyPlaybackStarted(ctx, "Kitchen"); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 {
		t.Fatalf("disabled categories sent %d requests", len(*got))
	}

	if err := svc.NotifyError(ctx, context.DeadlineExceeded, "pipe"); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 1 {
		t.Fatalf("error notification not delivered, %d requests", len(*got))
	}
	if want := "Error with pipe: context deadline exceeded"; (*got)[0].message != want {
		t.Fatalf("error message = %q, want %q", (*got)[0].message, want)
	}
}

func TestNtfyServiceSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("server error not surfaced")
	}
}

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tonearm/internal/config"
	"tonearm/internal/nowplaying"
)

const userAgent = "Tonearm/0.1.0"

// Service defines the notification surface exposed to the dispatcher and
// the CLI.
type Service interface {
	NotifyTrackStarted(ctx context.Context, track nowplaying.Track) error
	NotifyPlaybackStarted(ctx context.Context, streamName string) error
	NotifyPlaybackStopped(ctx context.Context, streamName string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		trackChanges: cfg.Notifications.TrackChanges,
		playback:     cfg.Notifications.Playback,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	trackChanges bool
	playback     bool
	errors       bool
}

func (n *ntfyService) NotifyTrackStarted(ctx context.Context, track nowplaying.Track) error {
	if !n.trackChanges {
		return nil
	}
	message := track.String()
	if track.Album != "" {
		message = fmt.Sprintf("%s\nAlbum: %s", message, track.Album)
	}
	data := payload{
		title:   "Tonearm - Now Playing",
		message: message,
		tags:    []string{"tonearm", "track"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPlaybackStarted(ctx context.Context, streamName string) error {
	if !n.playback {
		return nil
	}
	streamName = strings.TrimSpace(streamName)
	if streamName == "" {
		streamName = "unknown sender"
	}
	data := payload{
		title:   "Tonearm - Playback Started",
		message: fmt.Sprintf("Streaming from %s", streamName),
		tags:    []string{"tonearm", "playback", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPlaybackStopped(ctx context.Context, streamName string) error {
	if !n.playback {
		return nil
	}
	streamName = strings.TrimSpace(streamName)
	if streamName == "" {
		streamName = "unknown sender"
	}
	data := payload{
		title:   "Tonearm - Playback Stopped",
		message: fmt.Sprintf("Stream from %s ended", streamName),
		tags:    []string{"tonearm", "playback", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Tonearm - Error",
		message:  builder.String(),
		tags:     []string{"tonearm", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Tonearm - Test",
		message:  "Notification system test",
		tags:     []string{"tonearm", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTrackStarted(context.Context, nowplaying.Track) error { return nil }
func (noopService) NotifyPlaybackStarted(context.Context, string) error        { return nil }
func (noopService) NotifyPlaybackStopped(context.Context, string) error        { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }

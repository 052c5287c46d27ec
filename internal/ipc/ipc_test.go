package ipc_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tonearm/internal/history"
	"tonearm/internal/ipc"
	"tonearm/internal/nowplaying"
)

type fakeController struct {
	stopped  bool
	histErr  error
	testSent bool
}

func (f *fakeController) Status(context.Context) ipc.StatusResponse {
	return ipc.StatusResponse{
		Running:     true,
		PID:         4242,
		SourcePath:  "/tmp/shairport-sync-metadata",
		SourceState: "reading",
		Frames:      17,
	}
}

func (f *fakeController) Now() nowplaying.Snapshot {
	return nowplaying.Snapshot{
		State:    nowplaying.StatePlaying,
		HasTrack: true,
		Track:    nowplaying.Track{Title: "So What", Artist: "Miles Davis"},
	}
}

func (f *fakeController) HistoryList(_ context.Context, limit int) ([]history.Play, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	plays := []history.Play{
		{ID: 2, Title: "Freddie Freeloader"},
		{ID: 1, Title: "So What"},
	}
	if limit > 0 && limit < len(plays) {
		plays = plays[:limit]
	}
	return plays, nil
}

func (f *fakeController) TestNotification(context.Context) (bool, string, error) {
	f.testSent = true
	return true, "test notification sent", nil
}

func (f *fakeController) Stop() { f.stopped = true }

func startServer(t *testing.T, ctrl ipc.Controller) *ipc.Client {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "tonearmd.sock")
	server, err := ipc.NewServer(context.Background(), socket, ctrl, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStatusRoundTrip(t *testing.T) {
	client := startServer(t, &fakeController{})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 4242 {
		t.Fatalf("status = %+v", status)
	}
	if status.SourceState != "reading" || status.Frames != 17 {
		t.Fatalf("stream fields = %+v", status)
	}
}

func TestNowRoundTrip(t *testing.T) {
	client := startServer(t, &fakeController{})

	now, err := client.Now()
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if !now.Snapshot.HasTrack || now.Snapshot.Track.Title != "So What" {
		t.Fatalf("snapshot = %+v", now.Snapshot)
	}
	if now.Snapshot.State != nowplaying.StatePlaying {
		t.Fatalf("state = %v, want playing", now.Snapshot.State)
	}
}

func TestHistoryListRoundTrip(t *testing.T) {
	client := startServer(t, &fakeController{})

	resp, err := client.HistoryList(1)
	if err != nil {
		t.Fatalf("HistoryList: %v", err)
	}
	if len(resp.Plays) != 1 || resp.Plays[0].Title != "Freddie Freeloader" {
		t.Fatalf("plays = %+v", resp.Plays)
	}
}

func TestHistoryListSurfacesError(t *testing.T) {
	client := startServer(t, &fakeController{histErr: errors.New("database is locked")})

	if _, err := client.HistoryList(0); err == nil {
		t.Fatal("controller error not surfaced to client")
	}
}

func TestStopAndTestNotification(t *testing.T) {
	ctrl := &fakeController{}
	client := startServer(t, ctrl)

	note, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if !note.Sent || !ctrl.testSent {
		t.Fatalf("test notification not delivered: %+v", note)
	}

	stop, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stop.Stopped || !ctrl.stopped {
		t.Fatal("stop not propagated to controller")
	}
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "absent.sock")); err == nil {
		t.Fatal("Dial on missing socket succeeded")
	}
}

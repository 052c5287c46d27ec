package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tonearm/internal/config"
	"tonearm/internal/daemon"
	"tonearm/internal/ipc"
	"tonearm/internal/nowplaying"
	"tonearm/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func sessionStream(t *testing.T) []byte {
	t.Helper()
	return testsupport.NewStream(t).
		Signal("abeg").
		Text("ssnc", "snam", "Kitchen").
		Text("ssnc", "mdst", "1").
		Text("core", "minm", "So What").
		Text("core", "asar", "Miles Davis").
		Text("core", "asal", "Kind of Blue").
		Text("ssnc", "mden", "1").
		Signal("pbeg").
		Bytes()
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	source := filepath.Join(t.TempDir(), "stream.bin")
	if err := os.WriteFile(source, sessionStream(t), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testsupport.NewConfig(t,
		testsupport.WithSourcePath(source),
		testsupport.WithHistory(true),
	)
	configPath := writeTestConfig(t, cfg)

	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, d, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		srv.Close()
		d.Close()
		cancel()
	})

	return env
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if socket != "" {
		flags = append(flags, "--socket", socket)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCLIStatusAndNow(t *testing.T) {
	env := setupCLITestEnv(t)

	waitFor(t, "track commit", func() bool { return env.daemon.Now().HasTrack })

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Running")
	requireContains(t, out, "yes")
	requireContains(t, out, env.cfg.Source.Path)
	requireContains(t, out, "Plays")
	requireContains(t, out, "Sessions")

	out, _, err = runCLI(t, []string{"now", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("now --json: %v", err)
	}
	var snap nowplaying.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Track.Title != "So What" || snap.Track.Artist != "Miles Davis" {
		t.Fatalf("unexpected snapshot track: %+v", snap.Track)
	}

	out, _, err = runCLI(t, []string{"now"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("now: %v", err)
	}
	requireContains(t, out, "Miles Davis - So What")
	requireContains(t, out, "Kitchen")
}

func TestCLIHistoryFromDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	waitFor(t, "history row", func() bool {
		out, _, err := runCLI(t, []string{"history"}, env.socketPath, env.configPath)
		return err == nil && strings.Contains(out, "So What")
	})

	out, _, err := runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Miles Davis")
	requireContains(t, out, "Kind of Blue")
	requireContains(t, out, "Kitchen")
}

func TestCLIStop(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon stopping")
	waitFor(t, "daemon shutdown", func() bool { return !env.daemon.Running() })
}

func TestCLIDialErrorMentionsSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"now"}, socket, configPath)
	if err == nil {
		t.Fatal("expected dial error")
	}
	requireContains(t, err.Error(), socket)
	requireContains(t, err.Error(), "start the daemon")
}

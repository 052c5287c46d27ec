// Command tonearmd is the headless tonearm daemon. It loads the default
// configuration, then runs the daemon loop until SIGINT or SIGTERM. The
// systemd-friendly counterpart of `tonearm run`.
package main

import (
	"context"
	"flag"
	"log"

	"tonearm/internal/config"
	"tonearm/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("tonearmd: %v", err)
	}
}

package config

const (
	defaultSourcePath      = "/tmp/shairport-sync-metadata"
	defaultStateDir        = "~/.local/share/tonearm"
	defaultLogDir          = "~/.local/share/tonearm/logs"
	defaultArtworkDir      = "~/.local/share/tonearm/artwork"
	defaultAPIBind         = "127.0.0.1:7349"
	defaultMaxFrameBytes   = 8 << 20
	defaultChannelBuffer   = 64
	defaultReopenBackoffMS = 500
	defaultMaxBackoffMS    = 10_000
	defaultArtworkMaxFiles = 32
	defaultNATSPrefix      = "tonearm.metadata"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Source: Source{
			Path:            defaultSourcePath,
			Mode:            ModeContinuous,
			CreateFifo:      true,
			MaxFrameBytes:   defaultMaxFrameBytes,
			ChannelBuffer:   defaultChannelBuffer,
			ReopenBackoffMS: defaultReopenBackoffMS,
			MaxBackoffMS:    defaultMaxBackoffMS,
		},
		Paths: Paths{
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			ArtworkDir: defaultArtworkDir,
			APIBind:    defaultAPIBind,
		},
		History: History{
			Enabled:  true,
			KeepDays: 0,
		},
		Artwork: Artwork{
			Enabled:  true,
			MaxFiles: defaultArtworkMaxFiles,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			TrackChanges:   true,
			Playback:       true,
			Errors:         true,
		},
		NATS: NATS{
			SubjectPrefix: defaultNATSPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

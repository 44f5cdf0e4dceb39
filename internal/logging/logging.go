package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codenames-client/internal/config"
)

// Init installs the global logger. With LOG_FILE set, events are mirrored
// to a size-capped file alongside stdout.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	if cfg.File != "" {
		if fw, ferr := newCappedFileWriter(cfg.File, cfg.MaxMB); ferr == nil {
			output = io.MultiWriter(output, fw)
		} else {
			// keep stdout logging rather than failing startup
			defer func() { log.Warn().Err(ferr).Str("path", cfg.File).Msg("log file disabled") }()
		}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// SPDX-License-Identifier: EPL-2.0

// Command pcmframe turns audio files into fixed-size 16-bit PCM frames and
// writes them to WAV, streams them to a WebSocket endpoint, or receives such
// streams.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ik5/pcmframe/internal/config"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"YAML configuration file." type:"existingfile" placeholder:"FILE"`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn or error."`
}

type CLI struct {
	Globals

	Convert convertCmd `cmd:"" default:"withargs" help:"Frame an audio file (default command)."`
	Serve   serveCmd   `cmd:"" help:"Receive uplink streams and record them as WAV."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pcmframe"),
		kong.Description("Cut audio into fixed-duration mono 16-bit PCM frames."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		slog.Error("pcmframe failed", "err", err)
		os.Exit(1)
	}
}

// load reads the config file, if any, and applies the global overrides.
// apply lets the command layer its own flags on top before validation.
func (g *Globals) load(apply func(*config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return nil, err
		}
	}

	if g.LogLevel != "" {
		cfg.Log.Level = config.LogLevel(g.LogLevel)
	}
	if apply != nil {
		apply(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(newLogger(cfg.Log.Level))
	return cfg, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.Level()}))
}

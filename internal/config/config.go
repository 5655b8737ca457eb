// SPDX-License-Identifier: EPL-2.0

// Package config holds the pcmframe command's YAML configuration.
package config

import (
	"log/slog"

	"github.com/ik5/pcmframe/audio"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its slog level. Unknown and empty levels map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const DefaultUplinkQueue = 64

// Config is the root of the YAML file.
type Config struct {
	Pipeline audio.Config `yaml:"pipeline"`
	Capture  Capture      `yaml:"capture"`
	Output   Output       `yaml:"output"`
	Uplink   Uplink       `yaml:"uplink"`
	Log      Log          `yaml:"log"`
}

// Capture shapes how files are fed to the pipeline.
type Capture struct {
	// ChunkFrames is the number of time steps per simulated capture callback.
	ChunkFrames int `yaml:"chunk_frames"`
}

type Output struct {
	// WAV is the path frames are written to. Empty disables the file sink.
	WAV string `yaml:"wav"`
}

// Uplink configures streaming frames to a WebSocket endpoint.
type Uplink struct {
	// URL of the endpoint, ws:// or wss://. Empty disables the uplink.
	URL       string `yaml:"url"`
	SessionID string `yaml:"session_id"`
	// Queue is the number of frames buffered before new ones are dropped.
	Queue int `yaml:"queue"`
}

type Log struct {
	Level LogLevel `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Pipeline: audio.DefaultConfig(),
		Capture:  Capture{ChunkFrames: audio.DefaultChunkFrames},
		Uplink:   Uplink{Queue: DefaultUplinkQueue},
		Log:      Log{Level: LogInfo},
	}
}

// SPDX-License-Identifier: EPL-2.0

// Package config holds the engine settings. Values come from defaults, a
// YAML file found through viper, and AUDENGINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

var (
	ErrInvalidDriver   = errors.New("driver must be oto, malgo or virtual")
	ErrInvalidRate     = errors.New("sample rate out of range")
	ErrInvalidChannels = errors.New("channels must be 1 or 2")
	ErrInvalidStream   = errors.New("invalid stream setting")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type Config struct {
	// Output
	Driver           string        `yaml:"driver" mapstructure:"driver" env:"AUDENGINE_DRIVER" envDefault:"oto"`
	SampleRate       int           `yaml:"sample_rate" mapstructure:"sample_rate" env:"AUDENGINE_SAMPLE_RATE" envDefault:"48000"`
	Channels         int           `yaml:"channels" mapstructure:"channels" env:"AUDENGINE_CHANNELS" envDefault:"2"`
	OutputBufferSize time.Duration `yaml:"output_buffer_size" mapstructure:"output_buffer_size" env:"AUDENGINE_OUTPUT_BUFFER_SIZE" envDefault:"40ms"`
	PreferredDevice  string        `yaml:"preferred_device" mapstructure:"preferred_device" env:"AUDENGINE_PREFERRED_DEVICE"`

	// Resources
	ResourceRoot string `yaml:"resource_root" mapstructure:"resource_root" env:"AUDENGINE_RESOURCE_ROOT"`

	// Streaming
	StreamBuffers   int           `yaml:"stream_buffers" mapstructure:"stream_buffers" env:"AUDENGINE_STREAM_BUFFERS" envDefault:"4"`
	StreamChunkSize int           `yaml:"stream_chunk_size" mapstructure:"stream_chunk_size" env:"AUDENGINE_STREAM_CHUNK_SIZE" envDefault:"32768"`
	StreamInterval  time.Duration `yaml:"stream_interval" mapstructure:"stream_interval" env:"AUDENGINE_STREAM_INTERVAL" envDefault:"50ms"`

	LogLevel string `yaml:"log_level" mapstructure:"log_level" env:"AUDENGINE_LOG_LEVEL" envDefault:"info"`
}

// Default returns the built in settings.
func Default() Config {
	return Config{
		Driver:           "oto",
		SampleRate:       48000,
		Channels:         2,
		OutputBufferSize: 40 * time.Millisecond,
		StreamBuffers:    4,
		StreamChunkSize:  32768,
		StreamInterval:   50 * time.Millisecond,
		LogLevel:         "info",
	}
}

// FromEnv builds a Config from defaults overridden by the environment.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for values the engine cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case "oto", "malgo", "virtual":
	default:
		return fmt.Errorf("%q: %w", c.Driver, ErrInvalidDriver)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("%d Hz: %w", c.SampleRate, ErrInvalidRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%d: %w", c.Channels, ErrInvalidChannels)
	}
	if c.StreamBuffers < 2 || c.StreamBuffers > 16 {
		return fmt.Errorf("stream_buffers %d: %w", c.StreamBuffers, ErrInvalidStream)
	}
	if c.StreamChunkSize < 4 || c.StreamChunkSize%4 != 0 {
		return fmt.Errorf("stream_chunk_size %d must be a positive multiple of 4: %w", c.StreamChunkSize, ErrInvalidStream)
	}
	if c.StreamInterval <= 0 {
		return fmt.Errorf("stream_interval %v: %w", c.StreamInterval, ErrInvalidStream)
	}
	if c.OutputBufferSize < 0 {
		return fmt.Errorf("output_buffer_size %v: %w", c.OutputBufferSize, ErrInvalidStream)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%q: %w", c.LogLevel, ErrInvalidLogLevel)
	}
	return nil
}

// Level is the parsed LogLevel, info when it does not parse.
func (c Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

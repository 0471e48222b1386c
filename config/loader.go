// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// AppName names the config file and directory.
const AppName = "audengine"

// Dirs lists the directories searched for audengine.yaml, most specific
// first. AUDENGINE_CONFIG_HOME and XDG_CONFIG_HOME win over the platform
// defaults.
func Dirs() ([]string, error) {
	scope := gap.NewScope(gap.User, AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("locating config directories: %w", err)
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, AppName)}, dirs...)
	}
	if c := os.Getenv("AUDENGINE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

// DefaultFile is where a config file goes when none exists yet: AppName.yaml
// in the most specific config directory.
func DefaultFile() (string, error) {
	dirs, err := Dirs()
	if err != nil {
		return "", err
	}
	if len(dirs) == 0 {
		return "", ErrNoConfigFile
	}
	return filepath.Join(dirs[0], AppName+".yaml"), nil
}

// NewViper returns a viper instance set up to find the config file and
// read AUDENGINE_* variables. A missing file is not an error.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(AppName)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dirs, err := Dirs()
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
		v.SetConfigName(AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return v, fmt.Errorf("reading config: %w", err)
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("using configuration file", "path", used)
	}
	return v, nil
}

// LoadFromViper overlays keys present in v on the defaults.
func LoadFromViper(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v.IsSet("driver") {
		cfg.Driver = v.GetString("driver")
	}
	if v.IsSet("sample_rate") {
		cfg.SampleRate = v.GetInt("sample_rate")
	}
	if v.IsSet("channels") {
		cfg.Channels = v.GetInt("channels")
	}
	if v.IsSet("output_buffer_size") {
		cfg.OutputBufferSize = v.GetDuration("output_buffer_size")
	}
	if v.IsSet("resource_root") {
		cfg.ResourceRoot = v.GetString("resource_root")
	}
	if v.IsSet("stream_buffers") {
		cfg.StreamBuffers = v.GetInt("stream_buffers")
	}
	if v.IsSet("stream_chunk_size") {
		cfg.StreamChunkSize = v.GetInt("stream_chunk_size")
	}
	if v.IsSet("stream_interval") {
		cfg.StreamInterval = v.GetDuration("stream_interval")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	cfg.PreferredDevice = NewPreferenceStore(v).PreferredDevice()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

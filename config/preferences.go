// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// PreferredDeviceKey holds the name of the playback device to open.
const PreferredDeviceKey = "audio.preferred_device"

var ErrNoConfigFile = errors.New("no config file to save preferences to")

// PreferenceStore is the key/value view of the config file used for user
// choices that survive restarts.
type PreferenceStore struct {
	v *viper.Viper
}

func NewPreferenceStore(v *viper.Viper) *PreferenceStore {
	return &PreferenceStore{v: v}
}

// PreferredDevice falls back to the flat preferred_device key.
func (p *PreferenceStore) PreferredDevice() string {
	if p.v.IsSet(PreferredDeviceKey) {
		return p.v.GetString(PreferredDeviceKey)
	}
	return p.v.GetString("preferred_device")
}

func (p *PreferenceStore) SetPreferredDevice(name string) {
	p.v.Set(PreferredDeviceKey, name)
}

// Save writes the store to path, to the config file it was read from, or
// to DefaultFile when neither is known.
func (p *PreferenceStore) Save(path string) error {
	if path == "" {
		path = p.v.ConfigFileUsed()
	}
	if path == "" {
		var err error
		if path, err = DefaultFile(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := p.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configDirName is the per-user directory holding config overrides.
const configDirName = ".snowglobe"

// LoadViewer loads the viewer configuration.
// Search order: customPath -> ~/.snowglobe/configs/viewer.yaml -> ./configs/viewer.yaml -> embedded default
func LoadViewer(customPath string) (ViewerConfig, error) {
	return load(customPath, "viewer.yaml", defaultViewerYAML, DefaultViewerConfig)
}

// LoadVillage loads the snowy village configuration.
// Search order: customPath -> ~/.snowglobe/configs/village.yaml -> ./configs/village.yaml -> embedded default
func LoadVillage(customPath string) (VillageConfig, error) {
	return load(customPath, "village.yaml", defaultVillageYAML, DefaultVillageConfig)
}

// LoadTrainset loads the train set configuration.
// Search order: customPath -> ~/.snowglobe/configs/trainset.yaml -> ./configs/trainset.yaml -> embedded default
func LoadTrainset(customPath string) (TrainsetConfig, error) {
	return load(customPath, "trainset.yaml", defaultTrainsetYAML, DefaultTrainsetConfig)
}

// load decodes the first config found along the search order. Files are
// decoded over the hardcoded defaults, so a partial file only overrides the
// keys it sets. Keys the config type does not know make a file invalid, so a
// config written for another scene is rejected. Only a broken custom path is
// an error; every other source silently falls through to the next one.
func load[T any](customPath, filename string, embedded []byte, fallback func() T) (T, error) {
	cfg := fallback()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := decode(data, &cfg); err != nil {
			return fallback(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := decode(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = fallback()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := decode(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = fallback()
	}

	// Use embedded default YAML
	if err := decode(embedded, &cfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// decode strictly decodes a YAML document into out. An empty document leaves
// out untouched.
func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDirName, "configs", filename)
}

// DataDir returns ~/.snowglobe, or the current directory if home is unavailable.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, configDirName)
}

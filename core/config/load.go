package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}

	// Start from the defaults so partial files only override what they name.
	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	return out, nil
}

// LoadOrDefault loads the configuration in path, falling back to the
// defaults if there isn't one.
func LoadOrDefault(fsys afero.Fs, path string) (*Configuration, error) {
	cfg, err := Load(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Initialize writes the default configuration into dir. It refuses to
// overwrite an existing file.
func Initialize(fsys afero.Fs, dir string, logger *zap.Logger) error {
	target := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fsys, target)
	switch {
	case err != nil:
		return err
	case exists:
		return fmt.Errorf("%s: %w", target, fs.ErrExist)
	}

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logger.Info("writing default configuration", zap.String("path", target))
	return afero.WriteFile(fsys, target, defaultConfigData, 0644)
}

package manager

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/materialvault/materialvault/internal/vault"
)

// LoadSettings reads browser settings from a TOML file. A missing file is not
// an error to callers that fall back to defaults; they get the error and
// decide.
func LoadSettings(path string) (vault.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vault.Settings{}, err
	}

	s := vault.DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return vault.Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes browser settings to a TOML file, creating parent
// directories as needed. The write is atomic.
func SaveSettings(path string, s vault.Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/litsift/config.yml.
type GlobalConfig struct {
	WorkspacePath string `yaml:"workspace_path,omitempty"`
	PDFReader     string `yaml:"pdf_reader,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "litsift"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/litsift/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in workspace_path
	if cfg.WorkspacePath != "" {
		cfg.WorkspacePath = ExpandPath(cfg.WorkspacePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetWorkspacePath returns the configured workspace path from global config.
func GetWorkspacePath() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.WorkspacePath
}

// GetGlobalPDFReader returns the PDF reader from global config. The
// workspace config takes precedence when both are set.
func GetGlobalPDFReader() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.PDFReader
}

// ErrWorkspaceNotConfigured is returned when workspace_path is not set in config.
var ErrWorkspaceNotConfigured = errors.New("workspace_path not configured")

// ErrWorkspaceNotExist is returned when the configured workspace_path doesn't exist.
var ErrWorkspaceNotExist = errors.New("workspace_path does not exist")

// ValidateWorkspacePath returns the workspace path from global config after
// validation. Returns error if not configured or if the path is not a
// litsift workspace.
func ValidateWorkspacePath() (string, error) {
	path := GetWorkspacePath()
	if path == "" {
		return "", ErrWorkspaceNotConfigured
	}
	if !IsWorkspace(path) {
		return "", fmt.Errorf("%w: %s", ErrWorkspaceNotExist, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a helpful message when no workspace can be
// resolved from the working directory or the global config.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No litsift workspace found.

Tip: run "litsift init" in your review directory, or create %s
to set a default workspace:
  mkdir -p %s
  echo 'workspace_path: /path/to/your/review' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

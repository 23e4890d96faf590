package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Test with custom XDG_CONFIG_HOME
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/litsift/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "litsift", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point to a non-existent directory
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}

	// Should return empty config
	if cfg.WorkspacePath != "" {
		t.Errorf("WorkspacePath = %q, want empty", cfg.WorkspacePath)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Create config file
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "litsift")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	data := []byte("workspace_path: ~/reviews/asd-screening\npdf_reader: zathura\n")
	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// Check tilde expansion
	home, _ := os.UserHomeDir()
	wantPath := filepath.Join(home, "reviews/asd-screening")
	if cfg.WorkspacePath != wantPath {
		t.Errorf("WorkspacePath = %q, want %q", cfg.WorkspacePath, wantPath)
	}

	if cfg.PDFReader != "zathura" {
		t.Errorf("PDFReader = %q, want zathura", cfg.PDFReader)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Create invalid config file
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "litsift")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, []byte("workspace_path: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	_, err := LoadGlobalConfig()
	if err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestLoadGlobalConfig_Caches(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "litsift")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, []byte("pdf_reader: skim\n"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// Rewrite the file; the cached config should still be served
	if err := os.WriteFile(configFile, []byte("pdf_reader: evince\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if second != first {
		t.Error("LoadGlobalConfig() should return the cached config")
	}
	if second.PDFReader != "skim" {
		t.Errorf("PDFReader = %q, want cached skim", second.PDFReader)
	}
}

func TestValidateWorkspacePath_NotConfigured(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Empty config dir means no workspace_path
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := ValidateWorkspacePath()
	if !errors.Is(err, ErrWorkspaceNotConfigured) {
		t.Errorf("ValidateWorkspacePath() error = %v, want ErrWorkspaceNotConfigured", err)
	}
}

func TestValidateWorkspacePath_NotWorkspace(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point workspace_path at a directory with no .litsift
	tmpDir := t.TempDir()
	plainDir := filepath.Join(tmpDir, "plain")
	if err := os.MkdirAll(plainDir, 0755); err != nil {
		t.Fatal(err)
	}
	configDir := filepath.Join(tmpDir, "xdg", "litsift")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("workspace_path: " + plainDir + "\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	_, err := ValidateWorkspacePath()
	if !errors.Is(err, ErrWorkspaceNotExist) {
		t.Errorf("ValidateWorkspacePath() error = %v, want ErrWorkspaceNotExist", err)
	}
}

func TestValidateWorkspacePath_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, "review")
	if err := os.MkdirAll(filepath.Join(wsDir, LitsiftDir), 0755); err != nil {
		t.Fatal(err)
	}
	configDir := filepath.Join(tmpDir, "xdg", "litsift")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("workspace_path: " + wsDir + "\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	got, err := ValidateWorkspacePath()
	if err != nil {
		t.Fatalf("ValidateWorkspacePath() error = %v", err)
	}
	if got != wsDir {
		t.Errorf("ValidateWorkspacePath() = %q, want %q", got, wsDir)
	}
}

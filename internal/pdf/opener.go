// Package pdf extracts identifiers from full texts and opens linked PDFs.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ResolveLinked resolves a record's linked PDF path against the workspace
// root. Relative paths are stored workspace-relative so the corpus stays
// portable; absolute paths pass through.
func ResolveLinked(workspaceRoot, pdfPath string) (string, error) {
	if pdfPath == "" {
		return "", fmt.Errorf("record has no linked PDF")
	}

	fullPath := pdfPath
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(workspaceRoot, pdfPath)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("linked PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking linked PDF: %w", err)
	}

	return fullPath, nil
}

// Open opens a PDF file using the configured reader ("system" when empty).
// The fullPath should be an absolute path to an existing PDF file.
func Open(fullPath, reader string) error {
	// Fail fast if file doesn't exist
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PDF file does not exist: %s", fullPath)
		}
		return fmt.Errorf("checking PDF file: %w", err)
	}

	if reader == "" {
		reader = "system"
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = darwinCommand(fullPath, reader)
	case "linux":
		cmd = linuxCommand(fullPath, reader)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// darwinCommand returns the command to open a PDF on macOS.
func darwinCommand(path, reader string) *exec.Cmd {
	switch reader {
	case "skim":
		return exec.Command("open", "-a", "Skim", path)
	case "preview":
		return exec.Command("open", "-a", "Preview", path)
	default: // "system"
		return exec.Command("open", path)
	}
}

// linuxCommand returns the command to open a PDF on Linux.
func linuxCommand(path, reader string) *exec.Cmd {
	switch reader {
	case "zathura":
		return exec.Command("zathura", path)
	case "evince":
		return exec.Command("evince", path)
	case "okular":
		return exec.Command("okular", path)
	default: // "system"
		return exec.Command("xdg-open", path)
	}
}

package utils

import (
	"log/slog"
	"os"
	"path/filepath"
)

// GetProjectRoot resolves config, users and log files. LISTING_MANAGER_ROOT
// wins; otherwise the parent of the directory holding the binary.
func GetProjectRoot() string {
	if env := os.Getenv("LISTING_MANAGER_ROOT"); env != "" {
		return env
	}
	executable, err := os.Executable()
	if err != nil {
		slog.Error("failed to resolve executable", "error", err)
		os.Exit(1)
	}
	dir := filepath.Dir(executable)
	return filepath.Clean(filepath.Join(dir, ".."))
}

// ResolvePath joins relative paths onto the project root and leaves absolute ones alone.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GetProjectRoot(), p)
}

func EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0755)
}

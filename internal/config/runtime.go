package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	return absRuntimePath(os.Getenv("WISH_RUNTIME_PATH"))
}

func absRuntimePath(path string) string {
	if path == "" {
		path = ".wishbot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

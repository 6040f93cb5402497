// Package paths resolves where the bootstrapper keeps its files, such
// as config.yaml.
package paths

import (
	"os"
)

// GetDataDir returns the directory for persisted files: /app/data when
// running inside a container (detected via /.dockerenv), the working
// directory otherwise.
func GetDataDir() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "/app/data"
	}
	return "."
}

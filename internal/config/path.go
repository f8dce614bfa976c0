package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where transactions are stored unless configured otherwise.
const DefaultDatabasePath = "~/.local/share/bizbot/bizbot.db"

// ExpandPath expands ~ and environment variables in a file path.
// The SQLite in-memory name is returned untouched.
func ExpandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

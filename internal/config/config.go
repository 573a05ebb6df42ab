// Package config resolves the environment-derived paths the console
// needs before it can open anything: the per-agent home directories used
// as search filters, and the on-disk index location (spec.md §6).
package config

import (
	"os"
	"path/filepath"
)

// ClaudeHome resolves $CLAUDE_CONFIG_DIR, falling back to ~/.claude.
func ClaudeHome(override string) string {
	if override != "" {
		return expand(override)
	}
	if v := os.Getenv("CLAUDE_CONFIG_DIR"); v != "" {
		return expand(v)
	}
	return filepath.Join(homeDir(), ".claude")
}

// CodexHome resolves $CODEX_HOME, falling back to ~/.codex.
func CodexHome(override string) string {
	if override != "" {
		return expand(override)
	}
	if v := os.Getenv("CODEX_HOME"); v != "" {
		return expand(v)
	}
	return filepath.Join(homeDir(), ".codex")
}

// IndexPath returns the preferred index directory, falling back to the
// legacy location when the preferred one doesn't exist (spec.md §6:
// "older layouts ... must be recognized if present").
func IndexPath() string {
	preferred := filepath.Join(homeDir(), ".cctools", "search-index")
	if _, err := os.Stat(preferred); err == nil {
		return preferred
	}
	legacy := filepath.Join(homeDir(), ".claude", "search-index")
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return preferred
}

// ResolveDir expands ~ and resolves a relative path against cwd, for the
// --dir scope-pin flag.
func ResolveDir(path, cwd string) string {
	path = expand(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

func homeDir() string {
	if v := os.Getenv("HOME"); v != "" {
		return v
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}

func expand(path string) string {
	if path == "~" {
		return homeDir()
	}
	if len(path) >= 2 && path[:2] == "~/" {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

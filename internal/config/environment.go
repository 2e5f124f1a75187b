package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultEnvironment is selected when neither a flag nor RAILS_ENV names one.
	DefaultEnvironment = "development"

	envRoot = "RAILS_ROOT"
	envName = "RAILS_ENV"
)

// HostsFile is the location of the host table relative to the root.
var HostsFile = filepath.Join("config", "redis.yml")

var executablePath = os.Executable

// Environment identifies the deployment context and where its host table lives.
type Environment struct {
	Root string
	Name string
	File string
}

// ResolveEnvironment determines the root, environment name and host table path.
// Precedence: CLI flags > RAILS_ROOT / RAILS_ENV > defaults.
func ResolveEnvironment(overrides *CLIOverrides) (Environment, error) {
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	root := firstNonBlank(deref(overrides.Root), os.Getenv(envRoot))
	if root == "" {
		anchor := overrides.Anchor
		if anchor == "" {
			exe, err := executablePath()
			if err != nil {
				return Environment{}, fmt.Errorf("locate executable: %w", err)
			}
			anchor = exe
		}
		root = DefaultRoot(anchor)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Environment{}, fmt.Errorf("resolve root %q: %w", root, err)
	}

	name := firstNonBlank(deref(overrides.Env), os.Getenv(envName), DefaultEnvironment)

	file := strings.TrimSpace(deref(overrides.File))
	if file == "" {
		file = filepath.Join(absRoot, HostsFile)
	} else if !filepath.IsAbs(file) {
		if file, err = filepath.Abs(file); err != nil {
			return Environment{}, fmt.Errorf("resolve config file: %w", err)
		}
	}

	return Environment{Root: absRoot, Name: name, File: file}, nil
}

// DefaultRoot returns the parent of the parent of the directory containing anchor.
// An anchor at <root>/config/initializers/redis-bootstrap yields <root>.
func DefaultRoot(anchor string) string {
	return filepath.Clean(filepath.Join(filepath.Dir(anchor), "..", ".."))
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultRoot(t *testing.T) {
	anchor := filepath.Join("/srv", "app", "config", "initializers", "redis-bootstrap")
	if got, want := DefaultRoot(anchor), filepath.Join("/srv", "app"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveEnvironmentDefaults(t *testing.T) {
	t.Setenv("RAILS_ROOT", "")
	t.Setenv("RAILS_ENV", "")

	base := t.TempDir()
	anchor := filepath.Join(base, "config", "initializers", "redis.go")

	env, err := ResolveEnvironment(&CLIOverrides{Anchor: anchor})
	if err != nil {
		t.Fatalf("ResolveEnvironment returned error: %v", err)
	}
	if env.Root != base {
		t.Fatalf("expected root %s, got %s", base, env.Root)
	}
	if env.Name != DefaultEnvironment {
		t.Fatalf("expected %s, got %s", DefaultEnvironment, env.Name)
	}
	if want := filepath.Join(base, "config", "redis.yml"); env.File != want {
		t.Fatalf("expected file %s, got %s", want, env.File)
	}
}

func TestResolveEnvironmentUsesExecutable(t *testing.T) {
	t.Setenv("RAILS_ROOT", "")
	base := t.TempDir()

	original := executablePath
	t.Cleanup(func() { executablePath = original })
	executablePath = func() (string, error) {
		return filepath.Join(base, "bin", "tools", "redis-bootstrap"), nil
	}

	env, err := ResolveEnvironment(nil)
	if err != nil {
		t.Fatalf("ResolveEnvironment returned error: %v", err)
	}
	if env.Root != base {
		t.Fatalf("expected root %s, got %s", base, env.Root)
	}

	executablePath = func() (string, error) { return "", errors.New("no executable") }
	if _, err := ResolveEnvironment(nil); err == nil {
		t.Fatalf("expected error when executable cannot be located")
	}
}

func TestResolveEnvironmentPrecedence(t *testing.T) {
	envRoot := t.TempDir()
	t.Setenv("RAILS_ROOT", envRoot)
	t.Setenv("RAILS_ENV", "  production  ")

	env, err := ResolveEnvironment(nil)
	if err != nil {
		t.Fatalf("ResolveEnvironment returned error: %v", err)
	}
	if env.Root != envRoot || env.Name != "production" {
		t.Fatalf("expected env values, got %+v", env)
	}

	flagRoot := t.TempDir()
	name := "test"
	blank := "   "
	file := filepath.Join(flagRoot, "custom.yml")
	env, err = ResolveEnvironment(&CLIOverrides{Root: &flagRoot, Env: &name, File: &file})
	if err != nil {
		t.Fatalf("ResolveEnvironment returned error: %v", err)
	}
	if env.Root != flagRoot || env.Name != "test" || env.File != file {
		t.Fatalf("expected flag values, got %+v", env)
	}

	env, err = ResolveEnvironment(&CLIOverrides{Env: &blank})
	if err != nil {
		t.Fatalf("ResolveEnvironment returned error: %v", err)
	}
	if env.Name != "production" {
		t.Fatalf("blank flag should fall through to RAILS_ENV, got %s", env.Name)
	}
}

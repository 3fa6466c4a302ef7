package config

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/packrat/internal/errors"
)

func TestSettings_Apply(t *testing.T) {
	t.Run("applies present fields and keeps absent ones", func(t *testing.T) {
		s := Default()
		s.BaseDir = "/srv/data"

		changed, rejected, err := s.Apply(map[string]any{
			"compress_format": "zip",
			"encoding":        "base64",
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		if s.CompressFormat != "zip" {
			t.Errorf("CompressFormat = %q, want %q", s.CompressFormat, "zip")
		}
		if s.Encoding != "base64" {
			t.Errorf("Encoding = %q, want %q", s.Encoding, "base64")
		}
		if s.BaseDir != "/srv/data" {
			t.Errorf("BaseDir = %q, want untouched %q", s.BaseDir, "/srv/data")
		}

		wantChanged := []string{"compress_format", "encoding"}
		if !slices.Equal(changed, wantChanged) {
			t.Errorf("changed = %v, want %v", changed, wantChanged)
		}
		if len(rejected) != 0 {
			t.Errorf("rejected = %v, want none", rejected)
		}
	})

	t.Run("no-op payload reports nothing changed", func(t *testing.T) {
		s := Default()

		changed, rejected, err := s.Apply(map[string]any{
			"compress_format": "tar.gz",
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if len(changed) != 0 || len(rejected) != 0 {
			t.Errorf("changed = %v, rejected = %v, want both empty", changed, rejected)
		}
	})

	t.Run("non-object payload is rejected", func(t *testing.T) {
		s := Default()

		_, _, err := s.Apply(42)
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Fatalf("Apply(42) error = %v, want ErrInvalidInput", err)
		}
		if s.CompressFormat != "tar.gz" || s.Encoding != "utf8" {
			t.Error("settings mutated by failed Apply")
		}
	})

	t.Run("accepts yaml-shaped maps", func(t *testing.T) {
		s := Default()

		_, _, err := s.Apply(map[any]any{
			"encoding": "hex",
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if s.Encoding != "hex" {
			t.Errorf("Encoding = %q, want %q", s.Encoding, "hex")
		}
	})

	t.Run("undecodable field is an argument error", func(t *testing.T) {
		s := Default()

		_, _, err := s.Apply(map[string]any{
			"logging": "not a section",
		})
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Apply() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("invalid merged settings do not commit", func(t *testing.T) {
		s := Default()

		_, _, err := s.Apply(map[string]any{
			"compress_format": "rar",
		})

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("Apply() error = %v, want ValidationErrors", err)
		}
		if s.CompressFormat != "tar.gz" {
			t.Errorf("CompressFormat = %q, want unchanged %q", s.CompressFormat, "tar.gz")
		}
	})

	t.Run("replaces exclude list wholesale", func(t *testing.T) {
		s := Default()
		s.Excludes = []string{"*.log", "*.bak"}

		_, _, err := s.Apply(map[string]any{
			"excludes": []string{"*.tmp"},
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !slices.Equal(s.Excludes, []string{"*.tmp"}) {
			t.Errorf("Excludes = %v, want [*.tmp]", s.Excludes)
		}
	})

	t.Run("replaces watch ignore list wholesale", func(t *testing.T) {
		s := Default()
		s.Watch.Ignore = []string{".git", "node_modules"}

		changed, _, err := s.Apply(map[string]any{
			"watch": map[string]any{"ignore": []string{"dist"}},
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !slices.Equal(s.Watch.Ignore, []string{"dist"}) {
			t.Errorf("Watch.Ignore = %v, want [dist]", s.Watch.Ignore)
		}
		if !slices.Contains(changed, "watch") {
			t.Errorf("changed = %v, want to include watch", changed)
		}
	})

	t.Run("nested logging change reports the section", func(t *testing.T) {
		s := Default()

		changed, _, err := s.Apply(map[string]any{
			"logging": map[string]any{"level": "debug"},
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if s.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %q, want %q", s.Logging.Level, "debug")
		}
		// Untouched logging fields keep their values.
		if s.Logging.MaxSizeMB != 10 {
			t.Errorf("Logging.MaxSizeMB = %d, want 10", s.Logging.MaxSizeMB)
		}
		if !slices.Contains(changed, "logging") {
			t.Errorf("changed = %v, want to include logging", changed)
		}
	})
}

func TestSettings_Apply_Lock(t *testing.T) {
	t.Run("lock can be set through Apply", func(t *testing.T) {
		s := Default()

		changed, rejected, err := s.Apply(map[string]any{
			"base_dir":      "/srv/archives",
			"lock_base_dir": true,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !s.LockBaseDir {
			t.Error("LockBaseDir = false, want true")
		}
		if s.BaseDir != "/srv/archives" {
			t.Errorf("BaseDir = %q, want %q", s.BaseDir, "/srv/archives")
		}
		if len(rejected) != 0 {
			t.Errorf("rejected = %v, want none", rejected)
		}
		if !slices.Contains(changed, "base_dir") || !slices.Contains(changed, "lock_base_dir") {
			t.Errorf("changed = %v, want base_dir and lock_base_dir", changed)
		}
	})

	t.Run("locked base dir change is refused not errored", func(t *testing.T) {
		s := Default()
		s.BaseDir = "/srv/archives"
		s.LockBaseDir = true

		changed, rejected, err := s.Apply(map[string]any{
			"base_dir": "/tmp/elsewhere",
			"encoding": "base64",
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		if s.BaseDir != "/srv/archives" {
			t.Errorf("BaseDir = %q, want locked %q", s.BaseDir, "/srv/archives")
		}
		if !slices.Equal(rejected, []string{"base_dir"}) {
			t.Errorf("rejected = %v, want [base_dir]", rejected)
		}
		// The rest of the payload still applies.
		if s.Encoding != "base64" {
			t.Errorf("Encoding = %q, want %q", s.Encoding, "base64")
		}
		if !slices.Equal(changed, []string{"encoding"}) {
			t.Errorf("changed = %v, want [encoding]", changed)
		}
	})

	t.Run("lock itself cannot be cleared while locked", func(t *testing.T) {
		s := Default()
		s.LockBaseDir = true

		_, rejected, err := s.Apply(map[string]any{
			"lock_base_dir": false,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !s.LockBaseDir {
			t.Error("LockBaseDir = false, lock was cleared")
		}
		if !slices.Equal(rejected, []string{"lock_base_dir"}) {
			t.Errorf("rejected = %v, want [lock_base_dir]", rejected)
		}
	})

	t.Run("re-asserting the locked value is not a rejection", func(t *testing.T) {
		s := Default()
		s.BaseDir = "/srv/archives"
		s.LockBaseDir = true

		_, rejected, err := s.Apply(map[string]any{
			"base_dir":      "/srv/archives",
			"lock_base_dir": true,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if len(rejected) != 0 {
			t.Errorf("rejected = %v, want none", rejected)
		}
	})
}

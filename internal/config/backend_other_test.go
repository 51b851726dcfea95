//go:build !darwin

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	b := newPlatformBackend()
	if err := b.SetInt("server.port", 4555); err != nil {
		t.Fatal(err)
	}
	if err := b.SetString("log.level", "debug"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetBool("notify.enabled", false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lexis", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	reloaded := newPlatformBackend()
	if v, ok, err := reloaded.GetInt("server.port"); err != nil || !ok || v != 4555 {
		t.Errorf("GetInt = %d, %v, %v", v, ok, err)
	}
	if v, ok, _ := reloaded.GetString("log.level"); !ok || v != "debug" {
		t.Errorf("GetString = %q, %v", v, ok)
	}
	if v, ok, err := reloaded.GetBool("notify.enabled"); err != nil || !ok || v {
		t.Errorf("GetBool = %v, %v, %v", v, ok, err)
	}

	if err := reloaded.Delete("log.level"); err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Delete("log.level"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
	if _, ok, _ := newPlatformBackend().GetString("log.level"); ok {
		t.Error("log.level survived Delete")
	}
}

func TestFileBackendBoolFromString(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "lexis", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"notify.enabled":"false","wotd.hour":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	b := newPlatformBackend()
	if v, ok, err := b.GetBool("notify.enabled"); err != nil || !ok || v {
		t.Errorf("GetBool = %v, %v, %v", v, ok, err)
	}
	if _, _, err := b.GetInt("wotd.hour"); err == nil {
		t.Error("expected error for non-numeric int")
	}
}

func TestXDGDirFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if dir, ok := xdgDir("XDG_DATA_HOME", ".local", "share"); !ok || dir != "/xdg/data" {
		t.Errorf("xdgDir = %q, %v", dir, ok)
	}

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/lexis")
	if dir, ok := xdgDir("XDG_DATA_HOME", ".local", "share"); !ok || dir != "/home/lexis/.local/share" {
		t.Errorf("xdgDir = %q, %v", dir, ok)
	}
}

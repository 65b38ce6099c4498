package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// pointAt redirects the config globals into a temp dir for one test.
func pointAt(t *testing.T) string {
	t.Helper()
	origDir, origFile := ConfigDir, ConfigFile
	t.Cleanup(func() {
		ConfigDir, ConfigFile = origDir, origFile
	})
	ConfigDir = t.TempDir()
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	return ConfigDir
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	if s.Server != "http://127.0.0.1:8000" {
		t.Errorf("server = %q", s.Server)
	}
	if s.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d", s.TimeoutSeconds)
	}
	if s.Output != "text" {
		t.Errorf("output = %q", s.Output)
	}
	if s.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v", s.Timeout())
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	pointAt(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s != Defaults() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	pointAt(t)

	want := Settings{Server: "http://sentiment.internal:9000", TimeoutSeconds: 5, Output: "json"}
	if err := Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoad_FillsOmittedFields(t *testing.T) {
	pointAt(t)

	if err := os.WriteFile(ConfigFile, []byte("server: http://other:8000\n"), FilePermissions); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Server != "http://other:8000" {
		t.Errorf("server = %q", s.Server)
	}
	if s.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default", s.TimeoutSeconds)
	}
	if s.Output != "text" {
		t.Errorf("output = %q, want default", s.Output)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	pointAt(t)

	if err := os.WriteFile(ConfigFile, []byte("{{not yaml"), FilePermissions); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := Load()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if s != Defaults() {
		t.Errorf("settings = %+v, want defaults on parse failure", s)
	}
}

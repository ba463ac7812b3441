package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.DB.Files["dictionary"] != "db/db.json" {
		t.Errorf("dictionary path = %q", cfg.DB.Files["dictionary"])
	}
}

func TestAppConfig_EmptyFormatDefaultsConsole(t *testing.T) {
	cfg := ApplicationConfig{LogFormat: "", HTTP: HTTPConfig{Port: 8080}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default to console: %v", err)
	}
	if cfg.LogFormat != LogFormatConsole {
		t.Errorf("format = %q, want %q", cfg.LogFormat, LogFormatConsole)
	}
}

func TestAppConfig_InvalidFormat(t *testing.T) {
	cfg := ApplicationConfig{LogFormat: "xml", HTTP: HTTPConfig{Port: 8080}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid format should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestDBConfig_EmptyFiles(t *testing.T) {
	cfg := DBConfig{Files: nil}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty files map should fail validation")
	}
	if !strings.Contains(err.Error(), "at least one") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDBConfig_EmptyPath(t *testing.T) {
	cfg := DBConfig{Files: map[string]string{"rules": ""}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty path should fail validation")
	}
}

func TestDBConfig_TrackedPathsSorted(t *testing.T) {
	cfg := NewDefaultConfig().DB
	paths := cfg.TrackedPaths()
	if len(paths) != 3 {
		t.Fatalf("len = %d, want 3", len(paths))
	}
	want := []string{"db/db.json", "db/replacements.json", "db/rules.json"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
	}
}

func TestFullConfig_DBValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.DB.Files = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch db error")
	}
}

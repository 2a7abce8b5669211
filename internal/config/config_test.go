package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("VIAGGI_DB_PATH", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/viaggi.db" {
		t.Errorf("DBPath = %q, want ./data/viaggi.db", cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VIAGGI_DB_PATH", "/tmp/x.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/x.db" || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadBadLogLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouty")
	if cfg := Load(); cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info fallback", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Port: "8080", DBPath: filepath.Join(t.TempDir(), "v.db")},
		},
		{
			name:    "non numeric port",
			cfg:     Config{Port: "http", DBPath: "v.db"},
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			cfg:     Config{Port: "70000", DBPath: "v.db"},
			wantErr: "invalid port",
		},
		{
			name:    "empty db path",
			cfg:     Config{Port: "8080", DBPath: ""},
			wantErr: "database path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{Port: "nope", DBPath: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid port") || !strings.Contains(msg, "database path") {
		t.Fatalf("expected both problems reported, got: %s", msg)
	}
}

func TestValidateCreatesDatabaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	cfg := Config{Port: "8080", DBPath: filepath.Join(dir, "v.db")}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if got := cfg.GetServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("expected address 127.0.0.1:8080, got %s", got)
	}
	if cfg.Storage.Path != filepath.Join(os.TempDir(), "website4share") {
		t.Errorf("unexpected default storage path %s", cfg.Storage.Path)
	}
	if cfg.Upload.LenientOffset {
		t.Error("offsets should be strict by default")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "absent.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("expected default port, got %d", cfg.Server.Port)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		body := `{
			"server": {"port": 9090, "read_timeout": "45s", "idle_timeout": 1000000000},
			"storage": {"path": "/srv/rooms"},
			"upload": {"max_chunk_bytes": 1048576, "lenient_offset": true},
			"logging": {"level": "debug", "format": "json"}
		}`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.Server.Port)
		}
		if cfg.Server.Address != "127.0.0.1" {
			t.Errorf("unset fields keep defaults, got address %s", cfg.Server.Address)
		}
		if cfg.Server.ReadTimeout.Std() != 45*time.Second {
			t.Errorf("expected read timeout 45s, got %v", cfg.Server.ReadTimeout.Std())
		}
		if cfg.Server.IdleTimeout.Std() != time.Second {
			t.Errorf("expected idle timeout 1s, got %v", cfg.Server.IdleTimeout.Std())
		}
		if cfg.Storage.Path != "/srv/rooms" {
			t.Errorf("expected storage path /srv/rooms, got %s", cfg.Storage.Path)
		}
		if cfg.Upload.MaxChunkBytes != 1048576 || !cfg.Upload.LenientOffset {
			t.Errorf("unexpected upload config %+v", cfg.Upload)
		}
	})

	t.Run("invalid file is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"logging": {"level": "loud"}}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "invalid log level") {
			t.Errorf("expected invalid log level error, got %v", err)
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.json")

	cfg := Default()
	cfg.Server.ReadTimeout = Duration(90 * time.Second)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"read_timeout": "1m30s"`) {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.ReadTimeout != cfg.Server.ReadTimeout {
		t.Errorf("expected %v, got %v", cfg.Server.ReadTimeout.Std(), loaded.Server.ReadTimeout.Std())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "invalid read timeout"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "s3" }, "unsupported storage type"},
		{"empty path", func(c *Config) { c.Storage.Path = "" }, "requires a path"},
		{"negative chunk limit", func(c *Config) { c.Upload.MaxChunkBytes = -1 }, "invalid max chunk bytes"},
		{"zero writers", func(c *Config) { c.Upload.MaxConcurrentWrites = 0 }, "invalid max concurrent writes"},
		{"zero pasteboard limit", func(c *Config) { c.Pasteboard.MaxEntryBytes = 0 }, "invalid max pasteboard entry bytes"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"relative metrics endpoint", func(c *Config) { c.Metrics.Endpoint = "metrics" }, "invalid metrics endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errorMsg)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("ROOMSHARE_STORAGE_PATH", "/data/rooms")
	t.Setenv("ROOMSHARE_MAX_CHUNK_BYTES", "4096")
	t.Setenv("ROOMSHARE_MAX_CONCURRENT_WRITES", "4")
	t.Setenv("ROOMSHARE_LENIENT_OFFSET", "1")
	t.Setenv("ROOMSHARE_LOG_LEVEL", "debug")
	t.Setenv("ROOMSHARE_METRICS_ENABLED", "false")
	t.Setenv("ROOMSHARE_METRICS_USERNAME", "admin")

	cfg := Default()
	cfg.LoadFromEnv()

	if got := cfg.GetServerAddress(); got != "0.0.0.0:9000" {
		t.Errorf("expected 0.0.0.0:9000, got %s", got)
	}
	if cfg.Storage.Path != "/data/rooms" {
		t.Errorf("expected storage path /data/rooms, got %s", cfg.Storage.Path)
	}
	if cfg.Upload.MaxChunkBytes != 4096 {
		t.Errorf("expected max chunk 4096, got %d", cfg.Upload.MaxChunkBytes)
	}
	if cfg.Upload.MaxConcurrentWrites != 4 {
		t.Errorf("expected 4 writers, got %d", cfg.Upload.MaxConcurrentWrites)
	}
	if !cfg.Upload.LenientOffset {
		t.Error("lenient offset should be enabled from environment")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled from environment")
	}
	if cfg.Metrics.BasicAuth == nil || cfg.Metrics.BasicAuth.Username != "admin" {
		t.Errorf("expected basic auth username admin, got %+v", cfg.Metrics.BasicAuth)
	}
}

func TestLoadFromEnvPortPrecedence(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "10.0.0.1:9000")
	t.Setenv("ROOMSHARE_SERVER_PORT", "9100")

	cfg := Default()
	cfg.LoadFromEnv()

	if got := cfg.GetServerAddress(); got != "10.0.0.1:9100" {
		t.Errorf("expected 10.0.0.1:9100, got %s", got)
	}
}

func TestLoadFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "not-an-address")
	t.Setenv("ROOMSHARE_SERVER_PORT", "99999")

	cfg := Default()
	cfg.LoadFromEnv()

	if got := cfg.GetServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("invalid overrides should be ignored, got %s", got)
	}
}

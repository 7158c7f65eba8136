package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Storage    StorageConfig    `json:"storage"`
	Upload     UploadConfig     `json:"upload"`
	Pasteboard PasteboardConfig `json:"pasteboard"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	CORS       CORSConfig       `json:"cors"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Address      string   `json:"address"`
	Port         int      `json:"port"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout"`
	StaticDir    string   `json:"static_dir,omitempty"`
}

// StorageConfig contains storage backend configuration
type StorageConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// UploadConfig controls the chunked upload protocol
type UploadConfig struct {
	// MaxChunkBytes caps a single chunk request body; 0 means unlimited
	MaxChunkBytes int64 `json:"max_chunk_bytes"`
	// MaxConcurrentWrites bounds concurrent filesystem writes
	MaxConcurrentWrites int64 `json:"max_concurrent_writes"`
	// LenientOffset treats an unparseable offset as 0 instead of rejecting it
	LenientOffset bool `json:"lenient_offset"`
}

// PasteboardConfig contains pasteboard limits
type PasteboardConfig struct {
	MaxEntryBytes int64 `json:"max_entry_bytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// MetricsConfig contains metrics configuration
type MetricsConfig struct {
	Enabled   bool             `json:"enabled"`
	Endpoint  string           `json:"endpoint"`
	BasicAuth *BasicAuthConfig `json:"basic_auth,omitempty"`
}

// BasicAuthConfig contains basic authentication configuration
type BasicAuthConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CORSConfig contains cross-origin settings for the browser client
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

// Duration is a time.Duration that reads and writes as "30s" in JSON
type Duration time.Duration

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts either a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultStoragePath is the storage root used when none is configured
func DefaultStoragePath() string {
	return filepath.Join(os.TempDir(), "website4share")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "127.0.0.1",
			Port:    8080,
			// Large uploads arrive over slow links; only idle connections time out
			IdleTimeout: Duration(120 * time.Second),
		},
		Storage: StorageConfig{
			Type: "filesystem",
			Path: DefaultStoragePath(),
		},
		Upload: UploadConfig{
			MaxConcurrentWrites: 16,
		},
		Pasteboard: PasteboardConfig{
			MaxEntryBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load loads configuration from a JSON file
func Load(filename string) (*Config, error) {
	// Start with defaults
	config := Default()

	// If file doesn't exist, return defaults
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a JSON file
func (c *Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout: %v", c.Server.ReadTimeout.Std())
	}

	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("invalid write timeout: %v", c.Server.WriteTimeout.Std())
	}

	if c.Storage.Type != "filesystem" {
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("filesystem storage requires a path")
	}

	if c.Upload.MaxChunkBytes < 0 {
		return fmt.Errorf("invalid max chunk bytes: %d", c.Upload.MaxChunkBytes)
	}

	if c.Upload.MaxConcurrentWrites < 1 {
		return fmt.Errorf("invalid max concurrent writes: %d", c.Upload.MaxConcurrentWrites)
	}

	if c.Pasteboard.MaxEntryBytes < 1 {
		return fmt.Errorf("invalid max pasteboard entry bytes: %d", c.Pasteboard.MaxEntryBytes)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}

	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && (c.Metrics.Endpoint == "" || c.Metrics.Endpoint[0] != '/') {
		return fmt.Errorf("invalid metrics endpoint: %q", c.Metrics.Endpoint)
	}

	return nil
}

// GetServerAddress returns the complete server address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// LoadFromEnv loads configuration values from environment variables
func (c *Config) LoadFromEnv() {
	// LISTEN_ADDR is the historical host:port override
	if listen := os.Getenv("LISTEN_ADDR"); listen != "" {
		if host, port, err := net.SplitHostPort(listen); err == nil {
			if p, err := parsePort(port); err == nil {
				c.Server.Address = host
				c.Server.Port = p
			}
		}
	}

	if addr := os.Getenv("ROOMSHARE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}

	if port := os.Getenv("ROOMSHARE_SERVER_PORT"); port != "" {
		if p, err := parsePort(port); err == nil {
			c.Server.Port = p
		}
	}

	if dir := os.Getenv("ROOMSHARE_STATIC_DIR"); dir != "" {
		c.Server.StaticDir = dir
	}

	if path := os.Getenv("ROOMSHARE_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}

	if size := os.Getenv("ROOMSHARE_MAX_CHUNK_BYTES"); size != "" {
		if n, err := strconv.ParseInt(size, 10, 64); err == nil {
			c.Upload.MaxChunkBytes = n
		}
	}

	if writes := os.Getenv("ROOMSHARE_MAX_CONCURRENT_WRITES"); writes != "" {
		if n, err := strconv.ParseInt(writes, 10, 64); err == nil {
			c.Upload.MaxConcurrentWrites = n
		}
	}

	if lenient := os.Getenv("ROOMSHARE_LENIENT_OFFSET"); lenient != "" {
		c.Upload.LenientOffset = lenient == "true" || lenient == "1"
	}

	if level := os.Getenv("ROOMSHARE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if format := os.Getenv("ROOMSHARE_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	if enabled := os.Getenv("ROOMSHARE_METRICS_ENABLED"); enabled != "" {
		c.Metrics.Enabled = enabled == "true" || enabled == "1"
	}

	if endpoint := os.Getenv("ROOMSHARE_METRICS_ENDPOINT"); endpoint != "" {
		c.Metrics.Endpoint = endpoint
	}

	if username := os.Getenv("ROOMSHARE_METRICS_USERNAME"); username != "" {
		if c.Metrics.BasicAuth == nil {
			c.Metrics.BasicAuth = &BasicAuthConfig{}
		}
		c.Metrics.BasicAuth.Username = username
	}

	if password := os.Getenv("ROOMSHARE_METRICS_PASSWORD"); password != "" {
		if c.Metrics.BasicAuth == nil {
			c.Metrics.BasicAuth = &BasicAuthConfig{}
		}
		c.Metrics.BasicAuth.Password = password
	}
}

// parsePort parses a port string to int
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// Package config loads service configuration from an optional YAML file
// with environment-variable overrides, tracking where each value came from.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/identity/config"
	ConfigFileName    = "identity.yml"
)

// defaultReservedUsernames can be extended (not shrunk) from the config file.
var defaultReservedUsernames = []string{
	"admin", "administrator", "api", "help", "info",
	"moderator", "root", "security", "support", "system",
}

// Config holds all service settings.
type Config struct {
	// BindAddress and Port for the HTTP server.
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// RequestTimeoutSeconds bounds each inbound request, store I/O included.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// AuditRetentionDays is the pruning window for signature_audit rows.
	AuditRetentionDays int `yaml:"audit_retention_days"`

	// ReservedUsernames may never be registered.
	ReservedUsernames []string `yaml:"reserved_usernames"`

	// sources tracks where each value came from (default/file/env).
	sources map[string]string

	configFilePath string
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

func (c *Config) IsReservedUsername(username string) bool {
	for _, reserved := range c.ReservedUsernames {
		if username == reserved {
			return true
		}
	}
	return false
}

// Source reports where the named attribute's value came from.
func (c *Config) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// FilePath returns the config file path this config was loaded from.
func (c *Config) FilePath() string {
	return c.configFilePath
}

// AdminTokenSecret is the HS256 secret for admin bearer tokens. Environment
// only — secrets never live in the config file.
func AdminTokenSecret() []byte {
	return []byte(os.Getenv("IDENTITY_ADMIN_TOKEN_SECRET"))
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it on first use. Falls back
// to defaults if loading fails.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		defer configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = newDefault()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// Reload re-reads file and environment and swaps the global config.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *Config {
	return &Config{
		BindAddress:           "0.0.0.0",
		Port:                  8080,
		RequestTimeoutSeconds: 10,
		AuditRetentionDays:    90,
		ReservedUsernames:     append([]string(nil), defaultReservedUsernames...),
		sources:               make(map[string]string),
	}
}

// Load reads configuration from the config file and then the environment;
// environment values win.
func Load() (*Config, error) {
	cfg := newDefault()

	configPath := os.Getenv("IDENTITY_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(cfg.configFilePath); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", cfg.configFilePath, err)
		}
		cfg.applyFileConfig(&fileCfg)
	}

	cfg.applyEnvConfig()
	return cfg, nil
}

func (c *Config) applyFileConfig(file *Config) {
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.RequestTimeoutSeconds != 0 {
		c.RequestTimeoutSeconds = file.RequestTimeoutSeconds
		c.sources["request_timeout_seconds"] = "file"
	}
	if file.AuditRetentionDays != 0 {
		c.AuditRetentionDays = file.AuditRetentionDays
		c.sources["audit_retention_days"] = "file"
	}
	if len(file.ReservedUsernames) > 0 {
		c.ReservedUsernames = mergeReserved(c.ReservedUsernames, file.ReservedUsernames)
		c.sources["reserved_usernames"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if v := os.Getenv("IDENTITY_BIND_ADDRESS"); v != "" {
		c.BindAddress = v
		c.sources["bind_address"] = "env"
	}
	if v := os.Getenv("IDENTITY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
			c.sources["port"] = "env"
		}
	}
	if v := os.Getenv("IDENTITY_REQUEST_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.RequestTimeoutSeconds = secs
			c.sources["request_timeout_seconds"] = "env"
		}
	}
	if v := os.Getenv("IDENTITY_AUDIT_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.AuditRetentionDays = days
			c.sources["audit_retention_days"] = "env"
		}
	}
}

// mergeReserved unions the built-in reserved set with additions; the
// defaults can never be unreserved by configuration.
func mergeReserved(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string(nil), base...)
	for _, name := range base {
		seen[name] = true
	}
	for _, name := range extra {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// FormatText renders each attribute with its value and source, one per line.
func (c *Config) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config file: %s\n\n", c.configFilePath)
	fmt.Fprintf(&b, "bind_address: %s (source: %s)\n", c.BindAddress, c.Source("bind_address"))
	fmt.Fprintf(&b, "port: %d (source: %s)\n", c.Port, c.Source("port"))
	fmt.Fprintf(&b, "request_timeout_seconds: %d (source: %s)\n", c.RequestTimeoutSeconds, c.Source("request_timeout_seconds"))
	fmt.Fprintf(&b, "audit_retention_days: %d (source: %s)\n", c.AuditRetentionDays, c.Source("audit_retention_days"))
	fmt.Fprintf(&b, "reserved_usernames: %s (source: %s)\n", strings.Join(c.ReservedUsernames, ","), c.Source("reserved_usernames"))
	return b.String()
}

// FormatJSON renders attributes, values and sources as indented JSON.
func (c *Config) FormatJSON() (string, error) {
	type attribute struct {
		Value  interface{} `json:"value"`
		Source string      `json:"source"`
	}
	out, err := json.MarshalIndent(map[string]attribute{
		"bind_address":            {c.BindAddress, c.Source("bind_address")},
		"port":                    {c.Port, c.Source("port")},
		"request_timeout_seconds": {c.RequestTimeoutSeconds, c.Source("request_timeout_seconds")},
		"audit_retention_days":    {c.AuditRetentionDays, c.Source("audit_retention_days")},
		"reserved_usernames":      {c.ReservedUsernames, c.Source("reserved_usernames")},
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

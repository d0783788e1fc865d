package slides

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all slidekit server configuration.
type Config struct {
	Name      string        `yaml:"name"`
	Version   string        `yaml:"version"`
	Transport string        `yaml:"transport"` // stdio, http, quic
	HTTPAddr  string        `yaml:"http_addr"`
	QUIC      QUICConfig    `yaml:"quic"`
	RootDir   string        `yaml:"root_dir"`
	MaxFile   int64         `yaml:"max_file_size"`
	Journal   JournalConfig `yaml:"journal"`
	LogLevel  string        `yaml:"log_level"`
}

// QUICConfig controls the MCP-over-QUIC listener. Without a certificate a
// self-signed one is generated at startup.
type QUICConfig struct {
	Addr     string `yaml:"addr"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// JournalConfig controls the tool call journal. An empty DBPath disables it.
type JournalConfig struct {
	DBPath     string        `yaml:"db_path"`
	BufferSize int           `yaml:"buffer_size"`
	Retention  time.Duration `yaml:"retention"`
}

// Enabled reports whether tool calls are journaled.
func (c JournalConfig) Enabled() bool { return c.DBPath != "" }

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "slidekit"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Transport == "" {
		c.Transport = "stdio"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.QUIC.Addr == "" {
		c.QUIC.Addr = ":8443"
	}
	if c.MaxFile <= 0 {
		c.MaxFile = 256 << 20
	}
	if c.Journal.BufferSize <= 0 {
		c.Journal.BufferSize = 256
	}
	if c.Journal.Retention <= 0 {
		c.Journal.Retention = 30 * 24 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// LoadConfigFile reads a YAML config file. Unset fields take their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}

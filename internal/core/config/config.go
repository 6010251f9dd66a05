package config

import (
	"time"

	redisclient "github.com/vietddude/prober/internal/infra/redis"
	"github.com/vietddude/prober/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Jobs     []JobConfig        `yaml:"jobs"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// JobConfig describes one polling job.
type JobConfig struct {
	Name      string       `yaml:"name"`
	Store     StoreConfig  `yaml:"store"`
	Source    SourceConfig `yaml:"source"`
	OnSuccess PolicyConfig `yaml:"on_success"`
	OnEmpty   PolicyConfig `yaml:"on_empty"`
	OnError   PolicyConfig `yaml:"on_error"`
}

// Store types.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// StoreConfig selects where a job keeps its sentinel.
type StoreConfig struct {
	Type string `yaml:"type"` // memory, file, postgres, redis
	Path string `yaml:"path"` // file only
}

// Source types.
const (
	SourceSequence = "sequence"
	SourceTable    = "table"
)

// SourceConfig selects the processor that computes the next sentinel.
type SourceConfig struct {
	Type     string `yaml:"type"`     // sequence, table
	Sequence string `yaml:"sequence"` // sequence only
	Table    string `yaml:"table"`    // table only
	Column   string `yaml:"column"`   // table only, default "id"
	Limit    int    `yaml:"limit"`    // table only, 0 = unbounded
}

// PolicyConfig is the YAML form of auto.Policy.
type PolicyConfig struct {
	Type        string        `yaml:"type"` // abort, delay, continue, backoff
	Delay       time.Duration `yaml:"delay"`
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/prober/internal/core/auto"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables, decodes YAML, applies defaults and
// validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Store.Type == "" {
			job.Store.Type = StoreFile
		}
		if job.Store.Type == StoreFile && job.Store.Path == "" {
			job.Store.Path = job.Name + ".sentinel"
		}
		if job.Source.Type == SourceTable && job.Source.Column == "" {
			job.Source.Column = "id"
		}
		if job.OnSuccess.Type == "" {
			job.OnSuccess.Type = string(auto.PolicyContinue)
		}
		if job.OnEmpty.Type == "" {
			job.OnEmpty = PolicyConfig{Type: string(auto.PolicyDelay), Delay: 10 * time.Second}
		}
		if job.OnError.Type == "" {
			job.OnError = PolicyConfig{
				Type:        string(auto.PolicyBackoff),
				MaxAttempts: 5,
				BaseDelay:   time.Second,
				MaxDelay:    60 * time.Second,
			}
		}
	}
}

// Validate checks cross-field constraints.
func (cfg *AppConfig) Validate() error {
	seen := make(map[string]bool, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		if job.Name == "" {
			return fmt.Errorf("%w: job without name", ErrInvalidConfig)
		}
		if seen[job.Name] {
			return fmt.Errorf("%w: duplicate job %q", ErrInvalidConfig, job.Name)
		}
		seen[job.Name] = true

		switch job.Store.Type {
		case StoreMemory, StoreFile:
		case StorePostgres:
			if cfg.Database.URL == "" {
				return fmt.Errorf("%w: job %q uses postgres store but database.url is empty", ErrInvalidConfig, job.Name)
			}
		case StoreRedis:
			if cfg.Redis.URL == "" {
				return fmt.Errorf("%w: job %q uses redis store but redis.url is empty", ErrInvalidConfig, job.Name)
			}
		default:
			return fmt.Errorf("%w: job %q has unknown store type %q", ErrInvalidConfig, job.Name, job.Store.Type)
		}

		switch job.Source.Type {
		case SourceSequence:
			if job.Source.Sequence == "" {
				return fmt.Errorf("%w: job %q needs source.sequence", ErrInvalidConfig, job.Name)
			}
		case SourceTable:
			if job.Source.Table == "" {
				return fmt.Errorf("%w: job %q needs source.table", ErrInvalidConfig, job.Name)
			}
		default:
			return fmt.Errorf("%w: job %q has unknown source type %q", ErrInvalidConfig, job.Name, job.Source.Type)
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("%w: job %q reads from postgres but database.url is empty", ErrInvalidConfig, job.Name)
		}

		if _, err := job.DriverConfig(); err != nil {
			return fmt.Errorf("%w: job %q: %v", ErrInvalidConfig, job.Name, err)
		}
	}
	return nil
}

// Policy builds the runtime policy. Each call creates a fresh backoff
// schedule, so slots never share one.
func (p PolicyConfig) Policy() (auto.Policy, error) {
	switch auto.PolicyKind(p.Type) {
	case auto.PolicyAbort:
		return auto.Abort(), nil
	case auto.PolicyContinue:
		return auto.Continue(), nil
	case auto.PolicyDelay:
		return auto.FixedDelay(p.Delay), nil
	case auto.PolicyBackoff:
		return auto.WithBackoff(auto.NewBackoff(p.MaxAttempts, p.BaseDelay, p.MaxDelay)), nil
	default:
		return auto.Policy{}, fmt.Errorf("unknown policy type %q", p.Type)
	}
}

// DriverConfig builds and validates the three policy slots of a job.
func (j JobConfig) DriverConfig() (auto.Config, error) {
	var cfg auto.Config
	var err error

	if cfg.OnSuccess, err = j.OnSuccess.Policy(); err != nil {
		return auto.Config{}, fmt.Errorf("on_success: %w", err)
	}
	if cfg.OnEmpty, err = j.OnEmpty.Policy(); err != nil {
		return auto.Config{}, fmt.Errorf("on_empty: %w", err)
	}
	if cfg.OnError, err = j.OnError.Policy(); err != nil {
		return auto.Config{}, fmt.Errorf("on_error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return auto.Config{}, err
	}
	return cfg, nil
}

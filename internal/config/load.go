package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvLookup resolves an environment variable.
type EnvLookup func(key string) (string, bool)

type loadOptions struct {
	envLookup EnvLookup
	readFile  func(string) ([]byte, error)
	homeDir   func() (string, error)
}

// Option customizes Load so tests can inject their own environment and file
// contents.
type Option func(*loadOptions)

// WithEnv replaces the environment lookup used for IMGD_* overrides.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithFileReader replaces the file reader used for the yaml config.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = read }
}

// WithHomeDir replaces the home directory lookup used for the default
// config location.
func WithHomeDir(home func() (string, error)) Option {
	return func(o *loadOptions) { o.homeDir = home }
}

// Load builds the configuration: defaults first, then the yaml file, then
// IMGD_* environment overrides. An explicit path must exist; with an empty
// path the default location (~/.imgd/config.yaml) is used when present and
// silently skipped otherwise.
func Load(path string, opts ...Option) (Config, error) {
	options := loadOptions{
		envLookup: os.LookupEnv,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()

	optional := false
	if path == "" {
		if home, err := options.homeDir(); err == nil {
			path = filepath.Join(home, ".imgd", "config.yaml")
			optional = true
		}
	}
	if path != "" {
		data, err := options.readFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case optional && errors.Is(err, fs.ErrNotExist):
			// No config file in the default location is fine.
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, options.envLookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup EnvLookup) error {
	if value, ok := lookup("IMGD_HOST"); ok && value != "" {
		cfg.Server.Host = value
	}
	if value, ok := lookup("IMGD_PORT"); ok && value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("IMGD_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if value, ok := lookup("IMGD_MAX_UPLOAD_BYTES"); ok && value != "" {
		limit, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("IMGD_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.Server.MaxUploadBytes = limit
	}
	if value, ok := lookup("IMGD_CORS_ORIGINS"); ok && value != "" {
		cfg.Server.CORSOrigins = splitList(value)
	}

	if value, ok := lookup("IMGD_UID"); ok && value != "" {
		cfg.Worker.UID = value
	}
	if value, ok := lookup("IMGD_COUNTRY"); ok && value != "" {
		cfg.Worker.Country = value
	}
	if value, ok := lookup("IMGD_REGION"); ok && value != "" {
		cfg.Worker.Region = value
	}

	if value, ok := lookup("IMGD_NAMESERVERS"); ok && value != "" {
		cfg.Network.Nameservers = splitList(value)
	}
	if value, ok := lookup("IMGD_DNS_CACHE_SIZE"); ok && value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("IMGD_DNS_CACHE_SIZE: %w", err)
		}
		cfg.Network.CacheSize = size
	}

	if value, ok := lookup("IMGD_LOG_LEVEL"); ok && value != "" {
		cfg.Observability.Logging.Level = value
	}
	if value, ok := lookup("IMGD_LOG_FORMAT"); ok && value != "" {
		cfg.Observability.Logging.Format = value
	}
	if value, ok := lookup("IMGD_METRICS_ENABLED"); ok && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("IMGD_METRICS_ENABLED: %w", err)
		}
		cfg.Observability.Metrics.Enabled = enabled
	}
	if value, ok := lookup("IMGD_PROMETHEUS_PORT"); ok && value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("IMGD_PROMETHEUS_PORT: %w", err)
		}
		cfg.Observability.Metrics.PrometheusPort = port
	}
	if value, ok := lookup("IMGD_TRACING_ENABLED"); ok && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("IMGD_TRACING_ENABLED: %w", err)
		}
		cfg.Observability.Tracing.Enabled = enabled
	}
	if value, ok := lookup("IMGD_TRACING_EXPORTER"); ok && value != "" {
		cfg.Observability.Tracing.Exporter = value
	}
	if value, ok := lookup("IMGD_OTLP_ENDPOINT"); ok && value != "" {
		cfg.Observability.Tracing.OTLPEndpoint = value
	}
	if value, ok := lookup("IMGD_ZIPKIN_ENDPOINT"); ok && value != "" {
		cfg.Observability.Tracing.ZipkinEndpoint = value
	}
	if value, ok := lookup("IMGD_TRACE_SAMPLE_RATE"); ok && value != "" {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("IMGD_TRACE_SAMPLE_RATE: %w", err)
		}
		cfg.Observability.Tracing.SampleRate = rate
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Package config holds the service configuration: a yaml file merged over
// defaults, then IMGD_* environment overrides on top.
package config

import (
	"fmt"
	"net"
	"strconv"

	"imgd/internal/observability"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 20 << 20
	DefaultCacheSize      = 512

	// Worker identity defaults match the reference deployment.
	DefaultUID     = "e885106536fe"
	DefaultCountry = "US"
	DefaultRegion  = "us-west"
)

// DefaultNameservers are the public resolvers queried when none are configured.
var DefaultNameservers = []string{"1.1.1.1", "8.8.8.8", "8.8.4.4"}

// Config is the full service configuration.
type Config struct {
	Server        ServerConfig         `yaml:"server"`
	Worker        WorkerConfig         `yaml:"worker"`
	Network       NetworkConfig        `yaml:"network"`
	Observability observability.Config `yaml:"observability"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// Addr returns the host:port the server binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// WorkerConfig identifies this worker in the /hello endpoint.
type WorkerConfig struct {
	UID     string `yaml:"uid"`
	Country string `yaml:"country"`
	Region  string `yaml:"region"`
}

// NetworkConfig configures the DNS resolver behind /dns/resolve.
type NetworkConfig struct {
	Nameservers []string `yaml:"nameservers"`
	CacheSize   int      `yaml:"cache_size"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			MaxUploadBytes: DefaultMaxUploadBytes,
			CORSOrigins:    []string{"*"},
		},
		Worker: WorkerConfig{
			UID:     DefaultUID,
			Country: DefaultCountry,
			Region:  DefaultRegion,
		},
		Network: NetworkConfig{
			Nameservers: append([]string(nil), DefaultNameservers...),
			CacheSize:   DefaultCacheSize,
		},
		Observability: observability.DefaultConfig(),
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if len(c.Network.Nameservers) == 0 {
		return fmt.Errorf("network.nameservers must not be empty")
	}
	if c.Network.CacheSize <= 0 {
		return fmt.Errorf("network.cache_size must be positive, got %d", c.Network.CacheSize)
	}
	if c.Observability.Metrics.Enabled {
		port := c.Observability.Metrics.PrometheusPort
		if port < 1 || port > 65535 {
			return fmt.Errorf("observability.metrics.prometheus_port %d out of range", port)
		}
		if port == c.Server.Port {
			return fmt.Errorf("observability.metrics.prometheus_port %d collides with server.port", port)
		}
	}
	return nil
}

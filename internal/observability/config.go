package observability

import "github.com/clubworks/clubledger/internal/config"

// Config holds tracing and request-logging settings.
type Config struct {
	ServiceName  string
	Version      string
	Environment  string
	OtelEnabled  bool
	OTLPEndpoint string
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:  cfg.AppName,
		Version:      cfg.AppVersion,
		Environment:  cfg.Environment,
		OtelEnabled:  cfg.OtelEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}
}

func (c Config) Debug() bool {
	return c.Environment != "production"
}

package core

import (
	"fmt"
	"strings"
	"time"
)

type RuntimeMode string

const (
	ModeProduction RuntimeMode = "production"
	// ModeTesting is used by server test suites; accounts skip provider token
	// generation in this mode.
	ModeTesting RuntimeMode = "testing"
)

const (
	DefaultFacebookBaseURL              = "graph.facebook.com"
	defaultTransportTimeout             = 30 * time.Second
	defaultTransportMaxResponseBodySize = int64(1 << 20)
)

func NormalizeMode(mode RuntimeMode) RuntimeMode {
	return RuntimeMode(strings.TrimSpace(strings.ToLower(string(mode))))
}

type ProviderCredentialsConfig struct {
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
	BaseURL      string `koanf:"base_url" mapstructure:"base_url"`
}

type TransportConfig struct {
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type Config struct {
	ServiceName string                    `koanf:"service_name" mapstructure:"service_name"`
	Mode        RuntimeMode               `koanf:"mode" mapstructure:"mode"`
	Facebook    ProviderCredentialsConfig `koanf:"facebook" mapstructure:"facebook"`
	Transport   TransportConfig           `koanf:"transport" mapstructure:"transport"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "accounts",
		Mode:        ModeProduction,
		Facebook: ProviderCredentialsConfig{
			BaseURL: DefaultFacebookBaseURL,
		},
		Transport: TransportConfig{
			Timeout:              defaultTransportTimeout,
			MaxResponseBodyBytes: defaultTransportMaxResponseBodySize,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	switch NormalizeMode(c.Mode) {
	case "", ModeProduction, ModeTesting:
	default:
		return fmt.Errorf("core: invalid mode %q", c.Mode)
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport timeout must not be negative")
	}
	if c.Transport.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: transport max_response_body_bytes must not be negative")
	}
	return nil
}

// FacebookClientID and FacebookClientSecret let the service config be handed
// to the Facebook adapter as its credentials configuration.
func (c Config) FacebookClientID() string {
	return strings.TrimSpace(c.Facebook.ClientID)
}

func (c Config) FacebookClientSecret() string {
	return strings.TrimSpace(c.Facebook.ClientSecret)
}

func (c Config) FacebookBaseURL() string {
	return strings.TrimSpace(c.Facebook.BaseURL)
}

func (c Config) RuntimeMode() RuntimeMode {
	mode := NormalizeMode(c.Mode)
	if mode == "" {
		return ModeProduction
	}
	return mode
}

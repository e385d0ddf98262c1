// Package tracing configures the OpenTelemetry tracer provider used by the
// file writer spans.
package tracing

import (
	"errors"
	"net/url"
	"time"
)

// Validation errors.
var (
	ErrEndpointRequired    = errors.New("tracing: endpoint is required when tracing is enabled")
	ErrEndpointInvalid     = errors.New("tracing: endpoint must be a URL with host (e.g. http://collector:4318)")
	ErrServiceNameRequired = errors.New("tracing: service name is required")
	ErrTimeoutInvalid      = errors.New("tracing: timeout must be positive")
	ErrSamplingRateInvalid = errors.New("tracing: sampling rate must be within [0.0, 1.0]")
)

// Config holds TracerProvider settings.
type Config struct {
	Enabled      bool
	Endpoint     string
	ServiceName  string
	Version      string
	Insecure     bool
	Timeout      time.Duration
	SamplingRate float64
}

// Validate checks an enabled configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrEndpointInvalid
	}
	if c.ServiceName == "" {
		return ErrServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return ErrSamplingRateInvalid
	}
	return nil
}

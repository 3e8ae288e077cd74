package agent

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Factory constructs a Sender for an API key. Construction may fail.
type Factory func(apiKey string) (Sender, error)

// Capability is the remote follow-up capability as resolved at startup.
// A capability that failed to load keeps the load error for diagnostics
// and is never invoked.
type Capability struct {
	factory Factory
	loadErr error
}

// NewCapability wraps an available factory.
func NewCapability(factory Factory) Capability {
	if factory == nil {
		return Unavailable(errors.New("no sender factory"))
	}
	return Capability{factory: factory}
}

// Unavailable records a capability that could not be loaded.
func Unavailable(err error) Capability {
	return Capability{loadErr: err}
}

// LoadCloud resolves the cloud client capability for apiURL.
func LoadCloud(apiURL string, timeout time.Duration) Capability {
	u, err := url.Parse(apiURL)
	if err != nil {
		return Unavailable(fmt.Errorf("invalid agent api url: %w", err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Unavailable(fmt.Errorf("invalid agent api url %q: expected http(s)://host", apiURL))
	}
	return NewCapability(func(apiKey string) (Sender, error) {
		client, err := NewCloudClient(u, apiKey, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}

// Available reports whether the capability loaded.
func (c Capability) Available() bool {
	return c.factory != nil
}

// LoadError is the reason the capability is unavailable, or nil.
func (c Capability) LoadError() error {
	return c.loadErr
}

// New constructs a Sender.
func (c Capability) New(apiKey string) (Sender, error) {
	if c.factory == nil {
		return nil, fmt.Errorf("agent capability unavailable: %w", c.loadErr)
	}
	return c.factory(apiKey)
}

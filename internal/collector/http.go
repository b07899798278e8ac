package collector

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/pulse/internal/core"
)

// DefaultTimeout is the per-request timeout when none is configured
const DefaultTimeout = 10 * time.Second

// HTTPConfig configures the client shared by all upstream adapters
type HTTPConfig struct {
	ProxyURL string
	Timeout  time.Duration
}

// ParseProxyURL accepts "http://host:port" or a bare "host:port". An empty
// string yields nil.
func ParseProxyURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("proxy url: %w", err))
	}
	if u.Host == "" {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("proxy url %q has no host", raw))
	}
	return u, nil
}

// NewHTTPClient builds the client used for every upstream call. Without an
// explicit proxy the standard HTTP(S)_PROXY environment is honoured.
func NewHTTPClient(cfg HTTPConfig) (*http.Client, error) {
	proxy, err := ParseProxyURL(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

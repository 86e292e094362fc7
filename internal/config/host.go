package config

import (
	"net"
	"strings"
)

// HostConfig holds request settings applied to every fetch of one host.
type HostConfig struct {
	// Headers are extra HTTP headers sent with each request to the host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for the host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .imgcrawl configuration file.
type File struct {
	// Defaults applies to every host unless overridden.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Hosts maps a host name (optionally with port) to its settings.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`
}

// ForHost returns the settings for host, merged over the defaults.
// Host lookup is case-insensitive; "example.com:8080" falls back to an
// "example.com" entry. Header values from the host entry win over default
// headers with the same name.
func (f *File) ForHost(host string) HostConfig {
	if f == nil {
		return HostConfig{}
	}

	result := HostConfig{UserAgent: f.Defaults.UserAgent}
	if len(f.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(f.Defaults.Headers))
		for k, v := range f.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	hc, ok := f.lookup(host)
	if !ok {
		if name, _, err := net.SplitHostPort(host); err == nil {
			hc, ok = f.lookup(name)
		}
	}
	if !ok {
		return result
	}

	if hc.UserAgent != "" {
		result.UserAgent = hc.UserAgent
	}
	if len(hc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(hc.Headers))
		}
		for k, v := range hc.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// lookup finds the entry for host, exactly or case-insensitively.
func (f *File) lookup(host string) (HostConfig, bool) {
	if hc, ok := f.Hosts[host]; ok {
		return hc, true
	}
	for name, candidate := range f.Hosts {
		if strings.EqualFold(name, host) {
			return candidate, true
		}
	}
	return HostConfig{}, false
}

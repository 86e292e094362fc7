package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "imgcrawl"

	// DefaultTimeout bounds a single page fetch, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 1 gives the deterministic depth-first crawl.
	// Higher values fetch frontier pages in parallel and make result order
	// unspecified.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies imgcrawl in HTTP requests.
	DefaultUserAgent = "imgcrawl/1.0 (+https://github.com/nao1215/imgcrawl)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOutputPath is where results are written when --output is not given.
	DefaultOutputPath = "results.json"

	// DefaultOutputFormat is the results file format.
	DefaultOutputFormat = FormatJSON

	// DefaultHistoryLimit is how many runs the history command lists.
	DefaultHistoryLimit = 20
)

// Output formats accepted by --format.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all options for a crawl run.
// It is populated from CLI flags and the optional YAML file and then passed
// down explicitly; nothing reads configuration from global state.
type Config struct {
	// SeedURL is the absolute http(s) URL the crawl starts from.
	SeedURL string

	// MaxDepth is the maximum number of link hops from the seed.
	// 0 means only the seed page is fetched.
	MaxDepth int

	// Timeout bounds each individual fetch.
	Timeout time.Duration

	// Concurrency is the maximum number of simultaneous fetches.
	Concurrency int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// ProxyURL routes requests through an http, https or socks5 proxy.
	// Empty means a direct connection.
	ProxyURL string

	// OutputPath is the file the results are written to.
	OutputPath string

	// OutputFormat is one of FormatJSON, FormatCSV or FormatMarkdown.
	OutputFormat string

	// Summary prints a per-depth table to stdout after the crawl.
	Summary bool

	// ConfigFilePath is the YAML config file path.
	// If empty, .imgcrawl is searched for in the current and home directories.
	ConfigFilePath string

	// HostConfigs holds per-host request settings loaded from the config file.
	HostConfigs *File

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string

	// SaveToDB records the finished run in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		Concurrency:  DefaultConcurrency,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		OutputPath:   DefaultOutputPath,
		OutputFormat: DefaultOutputFormat,
		LogFormat:    LogFormatText,
		SaveToDB:     true,
		DBDir:        XDGDataDir(),
		HostConfigs:  &File{Hosts: make(map[string]HostConfig)},
	}
}

// XDGDataDir returns the XDG data directory for imgcrawl.
// On Linux: ~/.local/share/imgcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for imgcrawl.
// On Linux: ~/.config/imgcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after flag parsing, before any network activity.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}
	if _, err := ParseSeedURL(c.SeedURL); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	switch c.OutputFormat {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return ErrUnknownOutputFormat
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return ErrUnknownLogFormat
	}
	if c.OutputPath == "" {
		return ErrNoOutputPath
	}
	if c.ProxyURL != "" {
		if err := validateProxyURL(c.ProxyURL); err != nil {
			return err
		}
	}
	return nil
}

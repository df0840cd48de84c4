package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/htmlfn/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "htmlfn.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HTMLFN_"

	// DefaultTemplates is the default templates directory.
	DefaultTemplates = "templates"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultRegion is the default object storage region.
	DefaultRegion = "us-east-1"

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = "10s"
)

// Config represents the complete htmlfn.json configuration.
type Config struct {
	// Templates is the directory holding template documents.
	Templates string `json:"templates,omitempty" env:"TEMPLATES"`

	// Context is an optional YAML or JSON file used as the default render
	// context.
	Context string `json:"context,omitempty" env:"CONTEXT"`

	// Lang is the language attribute of full pages.
	Lang string `json:"lang,omitempty" env:"LANG"`

	// StyleSheets are linked from every full page.
	StyleSheets []string `json:"styleSheets,omitempty" env:"STYLESHEETS" envSeparator:","`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" envPrefix:"SERVER_"`

	// Publish contains object storage configuration.
	Publish PublishConfig `json:"publish" envPrefix:"PUBLISH_"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" envPrefix:"LOG_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" env:"ADDR"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `json:"metrics" env:"METRICS"`

	// Preview enables the websocket live preview endpoint.
	Preview bool `json:"preview" env:"PREVIEW"`

	// Watch reloads templates when files in the templates directory change.
	Watch bool `json:"watch,omitempty" env:"WATCH"`

	// AllowedOrigins are host patterns accepted for preview connections.
	// Same-origin requests are always accepted.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" env:"ALLOWED_ORIGINS" envSeparator:","`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`
}

// PublishConfig contains object storage settings.
type PublishConfig struct {
	// Bucket is the destination bucket.
	Bucket string `json:"bucket,omitempty" env:"BUCKET"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" env:"PREFIX"`

	// Region is the storage region.
	Region string `json:"region,omitempty" env:"REGION"`

	// Endpoint overrides the storage endpoint for S3-compatible services.
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`

	// PathStyle addresses buckets by path instead of subdomain.
	PathStyle bool `json:"pathStyle,omitempty" env:"PATH_STYLE"`

	// AccessKeyID and SecretAccessKey are static credentials. They are
	// normally supplied through the environment only.
	AccessKeyID     string `json:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" env:"SECRET_ACCESS_KEY"`

	// CacheControl is set on every uploaded object.
	CacheControl string `json:"cacheControl,omitempty" env:"CACHE_CONTROL"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Templates: DefaultTemplates,
		Lang:      "en",
		Server: ServerConfig{
			Addr:            DefaultAddr,
			Metrics:         true,
			Preview:         true,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Publish: PublishConfig{
			Region: DefaultRegion,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for htmlfn.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadOrDefault is like Load but falls back to the defaults when the
// directory has no htmlfn.json. Environment overrides apply either way,
// and relative paths resolve against dir.
func LoadOrDefault(dir string) (*Config, error) {
	if Exists(dir) {
		return Load(dir)
	}
	cfg := New()
	cfg.configPath = filepath.Join(dir, ConfigFileName)
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H021").
				WithDetail("No htmlfn.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'htmlfn init' to create one")
		}
		return nil, errors.New("H020").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("H020").
			WithDetail("Failed to parse htmlfn.json: " + err.Error()).
			WithSuggestion("Check that htmlfn.json is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HTMLFN_* variables. A nil environment
// means the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("H020").
			WithDetail("Invalid environment override: " + err.Error()).
			Wrap(err)
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("H020").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Templates == "" {
		c.Templates = DefaultTemplates
	}
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Publish.Region == "" {
		c.Publish.Region = DefaultRegion
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	invalid := func(detail, suggestion string) error {
		return errors.New("H020").WithDetail(detail).WithSuggestion(suggestion)
	}

	if c.Templates == "" {
		return invalid("templates must not be empty", `Set "templates" to the directory holding template documents`)
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr "+c.Server.Addr+" is not a host:port address", `Use a value such as ":8080"`)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return invalid("server.shutdownTimeout "+c.Server.ShutdownTimeout+" is not a duration", `Use a value such as "10s"`)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return invalid("log.level "+c.Log.Level+" is not a log level", "Use debug, info, warn or error")
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		return invalid("log.format "+c.Log.Format+" is not a log format", "Use text or json")
	}
	if (c.Publish.AccessKeyID == "") != (c.Publish.SecretAccessKey == "") {
		return invalid("publish credentials are incomplete", "Set both HTMLFN_PUBLISH_ACCESS_KEY_ID and HTMLFN_PUBLISH_SECRET_ACCESS_KEY, or neither")
	}
	return nil
}

// ShutdownTimeout returns the parsed server shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TemplatesPath returns the templates directory resolved against the
// config file location.
func (c *Config) TemplatesPath() string {
	return c.resolve(c.Templates)
}

// ContextPath returns the context file resolved against the config file
// location, or "" if none is configured.
func (c *Config) ContextPath() string {
	if c.Context == "" {
		return ""
	}
	return c.resolve(c.Context)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir() == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// Exists returns true if an htmlfn.json file exists in the directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing htmlfn.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("H021").
				WithDetail("No htmlfn.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'htmlfn init' to create one")
		}
		dir = parent
	}
}

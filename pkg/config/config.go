package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the SDK clients. Values are resolved in
// layers: explicit options override process environment, which overrides the
// built-in defaults.
type Config struct {
	APIKey             string
	APIURL             string
	AppURL             string
	TracesPath         string
	DefaultProjectID   string
	DefaultProjectName string
	Debug              bool
	RequestTimeout     time.Duration
	EvalParallelism    int
}

// Option overrides a single configuration value after the environment has been
// read.
type Option func(*Config)

// WithAPIKey overrides the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithAPIURL overrides the API base URL.
func WithAPIURL(url string) Option {
	return func(c *Config) { c.APIURL = strings.TrimRight(url, "/") }
}

// WithDefaultProject overrides the default project name.
func WithDefaultProject(name string) Option {
	return func(c *Config) { c.DefaultProjectName = name }
}

// WithDefaultProjectID overrides the default project identifier. When set it
// takes precedence over the project name for parent routing.
func WithDefaultProjectID(id string) Option {
	return func(c *Config) { c.DefaultProjectID = id }
}

// WithDebug toggles verbose SDK logging.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.Debug = debug }
}

// WithRequestTimeout overrides the API request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.RequestTimeout = timeout }
}

// WithEvalParallelism overrides the default number of concurrently executing
// test cases.
func WithEvalParallelism(n int) Option {
	return func(c *Config) { c.EvalParallelism = n }
}

// TracesURL returns the full OTLP trace ingestion endpoint.
func (c Config) TracesURL() string {
	return c.APIURL + c.TracesPath
}

// ParentValue returns the parent routing value derived from the default
// project settings. The ingestion endpoint routes spans by this attribute; an
// identifier wins over a name.
func (c Config) ParentValue() string {
	if c.DefaultProjectID != "" {
		return "project_id:" + c.DefaultProjectID
	}
	if c.DefaultProjectName != "" {
		return "project_name:" + c.DefaultProjectName
	}
	return ""
}

// Load reads configuration from environment variables and an optional .env
// file, then applies the provided overrides.
func Load(opts ...Option) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("api.url", "https://api.gema.dev")
	v.SetDefault("app.url", "https://www.gema.dev")
	v.SetDefault("traces.path", "/otel/v1/traces")
	v.SetDefault("default.project.name", "default-go-project")
	v.SetDefault("request.timeout", 30)
	v.SetDefault("eval.parallelism", 1)

	cfg := Config{
		APIKey:             v.GetString("api.key"),
		APIURL:             strings.TrimRight(v.GetString("api.url"), "/"),
		AppURL:             strings.TrimRight(v.GetString("app.url"), "/"),
		TracesPath:         v.GetString("traces.path"),
		DefaultProjectID:   v.GetString("default.project.id"),
		DefaultProjectName: v.GetString("default.project.name"),
		Debug:              v.GetBool("debug"),
		RequestTimeout:     time.Duration(v.GetInt("request.timeout")) * time.Second,
		EvalParallelism:    v.GetInt("eval.parallelism"),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("gema api key must be provided")
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	if cfg.EvalParallelism <= 0 {
		cfg.EvalParallelism = 1
	}

	return cfg, nil
}

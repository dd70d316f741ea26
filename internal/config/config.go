package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/reactive"
)

const (
	// ConfigFileName is the configuration file looked up in a project dir.
	ConfigFileName = "elements.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ELEMENTS"

	DefaultHost         = "localhost"
	DefaultPort         = 3000
	DefaultPublishDir   = "dist"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultWriteTimeout = 10 * time.Second
	DefaultReadTimeout  = 60 * time.Second
)

// Config is the full runtime configuration.
type Config struct {
	Reactive ReactiveConfig `mapstructure:"reactive" json:"reactive"`
	Render   RenderConfig   `mapstructure:"render" json:"render"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Live     LiveConfig     `mapstructure:"live" json:"live"`
	Publish  PublishConfig  `mapstructure:"publish" json:"publish"`

	// path is where the config was loaded from; empty when only defaults
	// and environment were used.
	path string
}

// ReactiveConfig tunes the effect scheduler.
type ReactiveConfig struct {
	// MaxFlushRounds bounds re-drains of a single flush before E103.
	MaxFlushRounds int `mapstructure:"maxFlushRounds" json:"maxFlushRounds"`
}

// RenderConfig controls HTML output of the render command.
type RenderConfig struct {
	Pretty bool `mapstructure:"pretty" json:"pretty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" json:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" json:"format"`
}

// ServerConfig is the listen address of the serve command.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// LiveConfig holds live session transport deadlines.
type LiveConfig struct {
	WriteTimeout time.Duration `mapstructure:"writeTimeout" json:"writeTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" json:"readTimeout"`
}

// PublishConfig selects where rendered pages are written. A non-empty
// S3Bucket takes precedence over Dir.
type PublishConfig struct {
	Dir      string `mapstructure:"dir" json:"dir"`
	S3Bucket string `mapstructure:"s3Bucket" json:"s3Bucket"`
	S3Prefix string `mapstructure:"s3Prefix" json:"s3Prefix"`
	S3Region string `mapstructure:"s3Region" json:"s3Region"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Reactive: ReactiveConfig{MaxFlushRounds: reactive.DefaultMaxFlushRounds},
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Server:   ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Live:     LiveConfig{WriteTimeout: DefaultWriteTimeout, ReadTimeout: DefaultReadTimeout},
		Publish:  PublishConfig{Dir: DefaultPublishDir},
	}
}

// Load reads configuration from elements.json in dir. A missing file is not
// an error: defaults and environment overrides still apply.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return load("")
		}
		return nil, errors.New("E108").Wrap(err)
	}
	return load(path)
}

// LoadFile reads configuration from the specified file path. Unlike Load,
// the file must exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New("E108").
			WithDetail("No config file at " + path).
			Wrap(err)
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("E108").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E108").Wrap(err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance seeded with every default so that
// AutomaticEnv can see each key during Unmarshal.
func newViper() *viper.Viper {
	d := New()
	v := viper.New()
	v.SetDefault("reactive.maxFlushRounds", d.Reactive.MaxFlushRounds)
	v.SetDefault("render.pretty", d.Render.Pretty)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("live.writeTimeout", d.Live.WriteTimeout.String())
	v.SetDefault("live.readTimeout", d.Live.ReadTimeout.String())
	v.SetDefault("publish.dir", d.Publish.Dir)
	v.SetDefault("publish.s3Bucket", "")
	v.SetDefault("publish.s3Prefix", "")
	v.SetDefault("publish.s3Region", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Reactive.MaxFlushRounds < 1 {
		return invalid("reactive.maxFlushRounds must be at least 1, got %d", c.Reactive.MaxFlushRounds)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("%v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port out of range: %d", c.Server.Port)
	}
	if c.Live.WriteTimeout <= 0 || c.Live.ReadTimeout <= 0 {
		return invalid("live timeouts must be positive")
	}
	if c.Publish.S3Bucket == "" && c.Publish.Dir == "" {
		return invalid("one of publish.dir or publish.s3Bucket is required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New("E108").
		WithDetailf(format, args...).
		WithSuggestion("Fix " + ConfigFileName + " or the matching " + EnvPrefix + "_* variable")
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Address returns the host:port listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Apply pushes process-wide settings into the runtime.
func (c *Config) Apply() {
	reactive.SetMaxFlushRounds(c.Reactive.MaxFlushRounds)
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: unknown level %q", s)
	}
	return level, nil
}

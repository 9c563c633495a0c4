// Package config loads shape-counter settings from an optional YAML file,
// SHAPES_* environment variables and built-in defaults, in that order of
// precedence after explicit command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/shape-counter/internal/shapes"
)

// EnvPrefix is prepended to every environment override, e.g.
// SHAPES_DETECT_MIN_AREA or SHAPES_REDIS_ADDR.
const EnvPrefix = "SHAPES"

// Config holds all runtime settings for the shape counter.
type Config struct {
	Detect  DetectConfig      `mapstructure:"detect"`
	Palette map[string]string `mapstructure:"palette"`
	Output  OutputConfig      `mapstructure:"output"`
	Backend string            `mapstructure:"backend"`
	Log     LogConfig         `mapstructure:"log"`
	Server  ServerConfig      `mapstructure:"server"`
	Redis   RedisConfig       `mapstructure:"redis"`
}

// DetectConfig tunes detection and annotation.
type DetectConfig struct {
	MinArea        float64 `mapstructure:"min_area"`
	MaxArea        float64 `mapstructure:"max_area"`
	EpsilonFactor  float64 `mapstructure:"epsilon_factor"`
	Threshold      int     `mapstructure:"threshold"`
	BlurKernel     int     `mapstructure:"blur_kernel"`
	SquareMinRatio float64 `mapstructure:"square_min_ratio"`
	SquareMaxRatio float64 `mapstructure:"square_max_ratio"`
	LineWidth      int     `mapstructure:"line_width"`
	Labels         bool    `mapstructure:"labels"`
}

// OutputConfig controls where the annotated image is written.
type OutputConfig struct {
	Path        string `mapstructure:"path"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	MaxUpload    int64         `mapstructure:"max_upload"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig configures the result cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads configPath (YAML) on top of the defaults. An empty configPath
// skips the file and uses defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("detect.min_area", d.Detect.MinArea)
	v.SetDefault("detect.max_area", d.Detect.MaxArea)
	v.SetDefault("detect.epsilon_factor", d.Detect.EpsilonFactor)
	v.SetDefault("detect.threshold", d.Detect.Threshold)
	v.SetDefault("detect.blur_kernel", d.Detect.BlurKernel)
	v.SetDefault("detect.square_min_ratio", d.Detect.SquareMinRatio)
	v.SetDefault("detect.square_max_ratio", d.Detect.SquareMaxRatio)
	v.SetDefault("detect.line_width", d.Detect.LineWidth)
	v.SetDefault("detect.labels", d.Detect.Labels)

	v.SetDefault("palette", d.Palette)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.jpeg_quality", d.Output.JPEGQuality)

	v.SetDefault("backend", d.Backend)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.max_upload", d.Server.MaxUpload)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)
}

// Default returns the built-in configuration.
func Default() *Config {
	p := shapes.DefaultParams()
	return &Config{
		Detect: DetectConfig{
			MinArea:        p.MinArea,
			MaxArea:        p.MaxArea,
			EpsilonFactor:  p.EpsilonFactor,
			Threshold:      int(p.Threshold),
			BlurKernel:     p.BlurKernel,
			SquareMinRatio: p.SquareMinRatio,
			SquareMaxRatio: p.SquareMaxRatio,
			LineWidth:      p.LineWidth,
			Labels:         p.Labels,
		},
		Palette: map[string]string{},
		Output: OutputConfig{
			Path:        "assets/output_images/detected_shapes.jpg",
			JPEGQuality: 95,
		},
		Backend: "native",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			Mode:         "release",
			MaxUpload:    10 * 1024 * 1024,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
	}
}

// Params converts the detect section into pipeline parameters.
func (c *Config) Params() shapes.Params {
	return shapes.Params{
		MinArea:        c.Detect.MinArea,
		MaxArea:        c.Detect.MaxArea,
		EpsilonFactor:  c.Detect.EpsilonFactor,
		Threshold:      uint8(c.Detect.Threshold),
		BlurKernel:     c.Detect.BlurKernel,
		SquareMinRatio: c.Detect.SquareMinRatio,
		SquareMaxRatio: c.Detect.SquareMaxRatio,
		LineWidth:      c.Detect.LineWidth,
		Labels:         c.Detect.Labels,
	}
}

// PaletteColors parses the palette section over the default colours.
func (c *Config) PaletteColors() (shapes.Palette, error) {
	return shapes.ParsePalette(c.Palette)
}

// Validate checks values that cannot be caught by type conversion.
func (c *Config) Validate() error {
	if c.Detect.Threshold < 0 || c.Detect.Threshold > 255 {
		return fmt.Errorf("invalid config: detect.threshold must be within 0-255, got %d", c.Detect.Threshold)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.PaletteColors(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Redis.Addr != "" && c.Redis.TTL < 0 {
		return errors.New("invalid config: redis.ttl must not be negative")
	}
	return nil
}

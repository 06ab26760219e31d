// Package config loads settings for the swr-resample command from an
// optional YAML file, SWR_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	swresample "github.com/tphakala/go-swresample"
	"github.com/tphakala/go-swresample/internal/logging"
)

// EnvPrefix is the environment variable prefix, e.g. SWR_RESAMPLE_OUT_RATE.
const EnvPrefix = "swr"

const configName = "swr-resample"

// Config is the full command configuration.
type Config struct {
	Resample swresample.Options `mapstructure:"resample" yaml:"resample"`
	Output   OutputConfig       `mapstructure:"output" yaml:"output"`
	Log      logging.Config     `mapstructure:"log" yaml:"log"`
}

// OutputConfig controls how converted audio is written.
type OutputConfig struct {
	// BitDepth of the written WAV file; 0 keeps the input depth.
	BitDepth int `mapstructure:"bit_depth" yaml:"bit_depth"`
	// ChunkSize is the number of frames handed to the resampler per call.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// ErrInvalid marks a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("resample.backend", swresample.BackendSoxr)
	v.SetDefault("resample.in_rate", 0)
	v.SetDefault("resample.out_rate", swresample.RateDAT)
	v.SetDefault("resample.format", "flt")
	v.SetDefault("resample.channels", 0)
	v.SetDefault("resample.precision", swresample.DefaultPrecision)
	v.SetDefault("resample.cutoff", 0.0)
	v.SetDefault("resample.cheby", false)
	v.SetDefault("resample.filter_type", int(swresample.FilterKaiser))
	v.SetDefault("resample.filter_size", 32)
	v.SetDefault("resample.phase_shift", 10)
	v.SetDefault("resample.linear_interp", true)
	v.SetDefault("resample.kaiser_beta", 9.0)
	v.SetDefault("resample.exact_rational", true)

	v.SetDefault("output.bit_depth", 0)
	v.SetDefault("output.chunk_size", 4096)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.stderr", true)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.name", "swr-resample.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)
}

// Load reads the config file into v and decodes the result. An explicit
// path must exist; without one the default locations are searched and a
// missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that do not depend on the input file.
func (c *Config) Validate() error {
	if c.Resample.OutRate <= 0 {
		return fmt.Errorf("%w: output rate must be positive", ErrInvalid)
	}
	if !c.Resample.Format.Valid() {
		return fmt.Errorf("%w: unknown sample format", ErrInvalid)
	}
	switch c.Output.BitDepth {
	case 0, 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d not supported", ErrInvalid, c.Output.BitDepth)
	}
	if c.Output.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

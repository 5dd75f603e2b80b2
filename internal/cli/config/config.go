// Package config loads schemadump's configuration from schemadump.yml,
// with environment variable overrides and sane defaults for every key.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the tool configuration.
type Config struct {
	Process ProcessConfig `mapstructure:"process"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ProcessConfig selects the target process.
type ProcessConfig struct {
	Name string `mapstructure:"name"`
}

// OutputConfig controls where and how dumps are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

// Load reads schemadump.yml (or .yaml) from the working directory. A
// missing file is not an error; every key has a default. Keys may be
// overridden via SCHEMADUMP_* environment variables, e.g.
// SCHEMADUMP_PROCESS_NAME.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("process.name", "cs2.exe")
	v.SetDefault("output.dir", "generated")
	v.SetDefault("output.formats", []string{"header", "json"})

	v.SetConfigName("schemadump")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("schemadump")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(cfg *Config) error {
	if cfg.Process.Name == "" {
		return fmt.Errorf("process.name must not be empty")
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	for _, f := range cfg.Output.Formats {
		switch f {
		case "header", "json":
		default:
			return fmt.Errorf("unknown output format %q (want header or json)", f)
		}
	}
	return nil
}

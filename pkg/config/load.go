package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Load reads kestrel.yml and returns the validated configuration. With an
// explicit path the file must exist; otherwise kestrel.yml is looked up in
// projectRoot and the working directory, and a missing file means defaults.
// Scalar values can be overridden through KESTREL_* environment variables
// (KESTREL_LIMITS_MAX_CANDIDATES=10). Any failure is a ConfigError; analysis
// never starts with a half-valid configuration.
func Load(projectRoot, explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("kestrel")
		if projectRoot != "" {
			v.AddConfigPath(projectRoot)
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("KESTREL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || explicitPath != "" {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
		// No kestrel.yml anywhere: run on defaults.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every configuration key so environment overrides and
// partial files merge over the built-in values.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("thresholds", d.Thresholds)
	v.SetDefault("weights", d.Weights)
	v.SetDefault("limits.max_file_size", d.Limits.MaxFileSize)
	v.SetDefault("limits.search_timeout", d.Limits.SearchTimeout)
	v.SetDefault("limits.max_candidates", d.Limits.MaxCandidates)
	v.SetDefault("roles.paths", d.Roles.Paths)
	v.SetDefault("roles.bases", d.Roles.Bases)
	v.SetDefault("roles.search", d.Roles.Search)
	v.SetDefault("layers", d.Layers)
	v.SetDefault("singletons", d.Singletons)
	v.SetDefault("settings_file", d.SettingsFile)
	v.SetDefault("exclude", d.Exclude)
}

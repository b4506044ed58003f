package config

import (
	"log/slog"
)

// Load reads configuration from the file named by DYNDNS_CONFIG (if any) and
// the environment, then validates it. Every problem found is reported in one
// *ValidationError.
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file. Precedence: defaults, then file, then environment.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()
	var errs []string

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, &ValidationError{Errors: []string{"config file: " + err.Error()}}
		}
		slog.Info("loaded configuration from file", slog.String("path", path))
		errs = append(errs, fileCfg.apply(cfg)...)
	}

	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, validateConfig(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

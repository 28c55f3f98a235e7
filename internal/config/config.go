// Package config loads pmguard settings from the config file and the
// environment. It is read exactly once at CLI entry; everything below
// the CLI receives explicit values instead of touching the process
// environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the risk service endpoint used when neither the
// config file nor the environment overrides it.
const DefaultAPIURL = "https://api.pmguard.dev/v0"

// Config is the resolved runtime configuration.
type Config struct {
	APIURL       string `yaml:"api_url"`
	APIToken     string `yaml:"api_token"`
	Progress     bool   `yaml:"progress"`
	Debug        bool   `yaml:"debug"`
	AcceptRisks  bool   `yaml:"-"`
	ViewAllRisks bool   `yaml:"-"`
}

// Load reads ~/.pmguard/config.yaml, falling back to defaults when the
// file is absent, then applies environment overrides. A malformed
// config file is an error; a missing one is not.
func Load(path string) (Config, error) {
	cfg := Config{
		APIURL:   DefaultAPIURL,
		Progress: true,
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".pmguard", "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PMGUARD_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("PMGUARD_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v, ok := os.LookupEnv("PMGUARD_DEBUG"); ok {
		cfg.Debug = truthy(v)
	}
	if v, ok := os.LookupEnv("PMGUARD_PROGRESS"); ok {
		cfg.Progress = truthy(v)
	}
	cfg.AcceptRisks = truthy(os.Getenv("PMGUARD_ACCEPT_RISKS"))
	cfg.ViewAllRisks = truthy(os.Getenv("PMGUARD_VIEW_ALL_RISKS"))
}

// truthy interprets boolean-ish env values the way the toggles are
// documented: 1/true/yes/on enable, everything else disables.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"smartroute/internal/prompt"
	"smartroute/internal/router"
)

// YAMLConfig represents the structure of the config.yaml file.
// Long prompt texts are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Prospect ModeConfig `yaml:"prospect"`
	Route    ModeConfig `yaml:"route"`
}

// ModeConfig overrides the texts used for one request mode.
// Empty fields keep the built-in defaults.
type ModeConfig struct {
	SystemInstruction string `yaml:"system_instruction"`
	Fallback          string `yaml:"fallback"`        // Shown when the model returns no text
	FailureMessage    string `yaml:"failure_message"` // Shown in the error banner
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Instructions returns the prompt overrides for prospecting and routing.
func (c *YAMLConfig) Instructions() (prospect, route prompt.Instructions) {
	if c == nil {
		return prompt.Instructions{}, prompt.Instructions{}
	}
	return c.Prospect.instructions(), c.Route.instructions()
}

// Messages returns the failure message overrides.
func (c *YAMLConfig) Messages() router.Messages {
	if c == nil {
		return router.Messages{}
	}
	return router.Messages{
		ProspectFailure: c.Prospect.FailureMessage,
		RouteFailure:    c.Route.FailureMessage,
	}
}

func (m ModeConfig) instructions() prompt.Instructions {
	return prompt.Instructions{System: m.SystemInstruction, Fallback: m.Fallback}
}

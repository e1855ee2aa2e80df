package analyzer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the standalone-CLI configuration file format.
type Config struct {
	LLM struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		RPM     int    `yaml:"rpm"`
	} `yaml:"llm"`
	Research struct {
		BaseURL string `yaml:"base_url"`
		Timeout int    `yaml:"timeout"`
	} `yaml:"research"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// LoadConfig reads a YAML config file, with environment variables filling
// in credentials when the file leaves them blank.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("SAASGENIUS_API_KEY")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	return &cfg, nil
}

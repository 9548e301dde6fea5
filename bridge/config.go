package bridge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/R0GUET3CHNO/interactive/notebook"
)

const (
	defaultRootURL  = "http://localhost:1024"
	defaultLanguage = "csharp"
)

// Config holds initialization parameters for the bridge: where the kernel
// hub lives and which document kinds the serializers handle.
type Config struct {
	RootURL         string                      `json:"root_url"`
	DefaultLanguage string                      `json:"default_language,omitempty"`
	Kinds           []notebook.SerializerConfig `json:"kinds,omitempty"`
}

// DefaultConfig returns a Config covering the three standard document
// kinds: the interactive document format, its legacy extension, and the
// Jupyter notebook format.
func DefaultConfig() Config {
	return Config{
		RootURL:         defaultRootURL,
		DefaultLanguage: defaultLanguage,
		Kinds: []notebook.SerializerConfig{
			{Extension: ".dib"},
			{Extension: ".dotnet-interactive"},
			{Extension: ".ipynb"},
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.RootURL != "" {
		c.RootURL = source.RootURL
	}
	if source.DefaultLanguage != "" {
		c.DefaultLanguage = source.DefaultLanguage
	}
	if len(source.Kinds) > 0 {
		c.Kinds = source.Kinds
	}
}

// normalize fills per-kind defaults from the top-level config.
func (c *Config) normalize() {
	for i := range c.Kinds {
		if c.Kinds[i].DefaultLanguage == "" {
			c.Kinds[i].DefaultLanguage = c.DefaultLanguage
		}
	}
}

// LoadConfig reads a JSON config file and merges it with defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

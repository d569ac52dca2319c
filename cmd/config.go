package cmd

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// toolConfig is the optional .callpath.yml at the analyzed repository's
// root. Explicit flags override everything in it.
type toolConfig struct {
	MaxDepth        int    `yaml:"maxDepth"`
	MaxNodes        int    `yaml:"maxNodes"`
	IncludeExternal bool   `yaml:"includeExternal"`
	Editor          string `yaml:"editor"`
	Format          string `yaml:"format"`
	Direction       string `yaml:"direction"`
	TSConfig        string `yaml:"tsconfig"`
}

const toolConfigName = ".callpath.yml"

// loadToolConfig reads the repository's tool config; a missing file yields
// zero values.
func loadToolConfig(repoRoot string) (toolConfig, error) {
	var cfg toolConfig
	raw, err := os.ReadFile(filepath.Join(repoRoot, toolConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

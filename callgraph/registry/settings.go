package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// CompilerSettings is the slice of the target project's compiler
// configuration the module resolver consumes: the base directory for
// non-relative specifiers and the path alias table.
type CompilerSettings struct {
	// BaseDir is absolute. Defaults to the repository root.
	BaseDir string
	// Paths maps alias patterns (with at most one '*') to candidate target
	// patterns, relative to BaseDir.
	Paths map[string][]string
}

// tsconfig is the on-disk shape we read. The files are JSONC: comments and
// trailing commas are legal, so the raw bytes go through a JSONC-to-JSON
// rewrite before unmarshalling.
type tsconfig struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadSettings reads the project's tsconfig/jsconfig into CompilerSettings.
// An empty configPath yields defaults (BaseDir = repoRoot, no aliases).
// `extends` chains are followed; the extending file's options win.
func LoadSettings(repoRoot, configPath string) (CompilerSettings, error) {
	settings := CompilerSettings{BaseDir: repoRoot}
	if configPath == "" {
		return settings, nil
	}
	visited := make(map[string]bool)
	if err := loadInto(&settings, repoRoot, configPath, visited); err != nil {
		return CompilerSettings{}, err
	}
	if settings.BaseDir == "" {
		settings.BaseDir = repoRoot
	}
	return settings, nil
}

func loadInto(settings *CompilerSettings, repoRoot, configPath string, visited map[string]bool) error {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	raw, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("reading compiler config: %w", err)
	}
	var cfg tsconfig
	if err := json.Unmarshal(jsonc.ToJSON(raw), &cfg); err != nil {
		return fmt.Errorf("parsing compiler config %s: %w", abs, err)
	}

	// Load the base config first so this file's options override it.
	if cfg.Extends != "" {
		base := cfg.Extends
		if !filepath.IsAbs(base) {
			base = filepath.Join(filepath.Dir(abs), base)
		}
		if _, err := os.Stat(base); err != nil && filepath.Ext(base) != ".json" {
			base += ".json"
		}
		if err := loadInto(settings, repoRoot, base, visited); err != nil {
			return err
		}
	}

	if cfg.CompilerOptions.BaseURL != "" {
		baseDir := cfg.CompilerOptions.BaseURL
		if !filepath.IsAbs(baseDir) {
			baseDir = filepath.Join(filepath.Dir(abs), baseDir)
		}
		settings.BaseDir = baseDir
	}
	if len(cfg.CompilerOptions.Paths) > 0 {
		if settings.Paths == nil {
			settings.Paths = make(map[string][]string)
		}
		for pattern, targets := range cfg.CompilerOptions.Paths {
			settings.Paths[pattern] = targets
		}
	}
	return nil
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/arborist-dev/mchi/pkg/fs"
	"github.com/arborist-dev/mchi/pkg/mchi"
)

// Config holds the tunables used when creating a new index file. Opening an
// existing file passes the same tunables to [mchi.Open]; a file whose size
// does not match them is reported as [mchi.ErrCorrupt] rather than
// silently coerced.
type Config struct {
	TableSize      uint64 `json:"table_size,omitempty"`
	KeySize        int    `json:"key_size,omitempty"`
	MaxItems       int    `json:"max_items,omitempty"`
	DataRegionSize int64  `json:"data_region_size,omitempty"`
	Hasher         string `json:"hasher,omitempty"` // "sum" or "xxhash"
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".mchi.json"

var errConfigFileNotFound = errors.New("config file not found")
var errConfigInvalid = errors.New("invalid config")

// DefaultConfig returns the built-in tunables, matching the defaults
// exposed by [mchi.Options].
func DefaultConfig() Config {
	return Config{
		TableSize:      mchi.DefaultTableSize,
		KeySize:        mchi.DefaultKeySize,
		MaxItems:       mchi.DefaultMaxItems,
		DataRegionSize: mchi.DefaultDataRegionSize,
		Hasher:         "sum",
	}
}

// getGlobalConfigPath returns the path to the global config file, honoring
// XDG_CONFIG_HOME and falling back to ~/.config/mchi/config.json.
func getGlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mchi", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "mchi", "config.json")
}

// LoadConfig loads configuration with the following precedence, highest
// wins: defaults, global user config, project config (.mchi.json in
// workDir, or an explicit path when configPath is non-empty).
func LoadConfig(fsys fs.FS, workDir, configPath string) (Config, error) {
	cfg := DefaultConfig()

	if globalPath := getGlobalConfigPath(); globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(fsys, globalPath, false)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	projectFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false
	if configPath != "" {
		projectFile = configPath
		if !filepath.IsAbs(projectFile) {
			projectFile = filepath.Join(workDir, projectFile)
		}
		mustExist = true
	}

	projectCfg, loaded, err := loadConfigFile(fsys, projectFile, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = mergeConfig(cfg, projectCfg)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadConfigFile(fsys fs.FS, path string, mustExist bool) (Config, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// WriteConfig durably writes cfg as formatted JSON to path, creating path's
// parent directory if necessary. Used by the `mchi config init` command.
func WriteConfig(fsys fs.FS, path string, cfg Config) error {
	formatted, err := FormatConfig(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}

	writer := fs.NewAtomicWriter(fsys)
	if err := writer.WriteWithDefaults(path, bytes.NewReader([]byte(formatted+"\n"))); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.TableSize != 0 {
		base.TableSize = overlay.TableSize
	}
	if overlay.KeySize != 0 {
		base.KeySize = overlay.KeySize
	}
	if overlay.MaxItems != 0 {
		base.MaxItems = overlay.MaxItems
	}
	if overlay.DataRegionSize != 0 {
		base.DataRegionSize = overlay.DataRegionSize
	}
	if overlay.Hasher != "" {
		base.Hasher = overlay.Hasher
	}
	return base
}

func validateConfig(cfg Config) error {
	switch strings.ToLower(cfg.Hasher) {
	case "sum", "xxhash":
	default:
		return fmt.Errorf("%w: unknown hasher %q (want \"sum\" or \"xxhash\")", errConfigInvalid, cfg.Hasher)
	}
	return nil
}

func (c Config) hasher() mchi.Hasher {
	if strings.ToLower(c.Hasher) == "xxhash" {
		return mchi.XXHasher{}
	}
	return mchi.SumHasher{}
}

// FormatConfig returns cfg as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}
	return string(data), nil
}

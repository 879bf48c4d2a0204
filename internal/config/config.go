// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file, the file wins over
// the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benbeisheim/arcade-backend/internal/model/gogame"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
	Go      Go      `yaml:"go"`
}

type Server struct {
	Addr string `yaml:"addr"`
	// AllowOrigins is a comma separated list, as fiber's cors middleware
	// expects.
	AllowOrigins string `yaml:"allowOrigins"`
}

type Storage struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Go struct {
	BoardSize int     `yaml:"boardSize"`
	Komi      float64 `yaml:"komi"`
}

func Default() Config {
	return Config{
		Server:  Server{Addr: ":3000", AllowOrigins: "http://localhost:5173"},
		Storage: Storage{Backend: BackendFile, Dir: "game_data"},
		Log:     Log{Level: "info"},
		Go:      Go{BoardSize: gogame.DefaultSize, Komi: gogame.DefaultKomi},
	}
}

// Load reads path (if non-empty and present), applies environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("'%s': %v", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads the file named by ARCADE_CONFIG.
func FromEnv() (Config, error) {
	return Load(os.Getenv("ARCADE_CONFIG"))
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getenv("ARCADE_ADDR", c.Server.Addr)
	c.Server.AllowOrigins = getenv("ARCADE_ALLOW_ORIGINS", c.Server.AllowOrigins)
	c.Storage.Backend = getenv("ARCADE_STORAGE", c.Storage.Backend)
	c.Storage.Dir = getenv("ARCADE_DATA_DIR", c.Storage.Dir)
	// zap parses levels case-sensitively.
	c.Log.Level = strings.ToLower(strings.TrimSpace(getenv("ARCADE_LOG_LEVEL", c.Log.Level)))
	c.Log.Development = getenb("ARCADE_LOG_DEV", c.Log.Development)

	if v := os.Getenv("ARCADE_GO_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: ARCADE_GO_SIZE=%q", ErrInvalidConfig, v)
		}
		c.Go.BoardSize = n
	}
	if v := os.Getenv("ARCADE_GO_KOMI"); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: ARCADE_GO_KOMI=%q", ErrInvalidConfig, v)
		}
		c.Go.Komi = k
	}
	return nil
}

func (c Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			problems = append(problems, "storage.dir is empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q is not file or memory", c.Storage.Backend))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not debug, info, warn or error", c.Log.Level))
	}
	if !gogame.ValidSize(c.Go.BoardSize) {
		problems = append(problems, fmt.Sprintf("go.boardSize %d is not 9, 13 or 19", c.Go.BoardSize))
	}
	if c.Go.Komi < 0 {
		problems = append(problems, fmt.Sprintf("go.komi %v is negative", c.Go.Komi))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

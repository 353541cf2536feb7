package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/factory"
	redisstorage "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage/redis"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string `yaml:"server"`
	SocketURL string `yaml:"socket"`
	Storage   string `yaml:"storage"`
	StateDir  string `yaml:"state_dir"`
	RedisURL  string `yaml:"redis_url"`
	Output    string `yaml:"output"`
	Verbose   bool   `yaml:"verbose"`

	// ConfigFile is where the YAML overlay was read from
	ConfigFile string `yaml:"-"`

	loadErr error
}

// DefaultConfig returns a Config built from defaults, the optional YAML
// file, then environment variables. A .env file in the working directory
// is loaded first.
func DefaultConfig() *Config {
	_ = godotenv.Load() // optional

	c := &Config{
		ServerURL:  factory.DefaultServerURL,
		Storage:    factory.StorageTypeFile,
		StateDir:   defaultStateDir(),
		Output:     "text",
		ConfigFile: getEnvOrDefault("QUIZ_CONFIG", filepath.Join(defaultStateDir(), "config.yaml")),
	}
	c.loadErr = c.LoadFile(c.ConfigFile)

	c.ServerURL = getEnvOrDefault("QUIZ_SERVER", c.ServerURL)
	c.SocketURL = getEnvOrDefault("QUIZ_SOCKET", c.SocketURL)
	c.Storage = getEnvOrDefault("QUIZ_STORAGE", c.Storage)
	c.StateDir = getEnvOrDefault("QUIZ_STATE_DIR", c.StateDir)
	c.RedisURL = getEnvOrDefault("QUIZ_REDIS_URL", c.RedisURL)
	return c
}

// LoadFile overlays settings from a YAML file. A missing file is fine.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	overlay(&c.ServerURL, file.ServerURL)
	overlay(&c.SocketURL, file.SocketURL)
	overlay(&c.Storage, file.Storage)
	overlay(&c.StateDir, file.StateDir)
	overlay(&c.RedisURL, file.RedisURL)
	overlay(&c.Output, file.Output)
	c.Verbose = c.Verbose || file.Verbose
	return nil
}

// FactoryConfig translates the CLI settings for the application factory
func (c *Config) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	fc := factory.Config{
		ServerURL:   c.ServerURL,
		SocketURL:   c.SocketURL,
		StorageType: c.Storage,
		StateDir:    c.StateDir,
		Logger:      logger,
	}
	if c.Storage == factory.StorageTypeRedis {
		if c.RedisURL == "" {
			return fc, errors.New("QUIZ_REDIS_URL required when storage is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		if user, err := os.UserHomeDir(); err == nil {
			redisCfg.Namespace = filepath.Base(user)
		}
		fc.RedisConfig = &redisCfg
	}
	return fc, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quizctl"
	}
	return filepath.Join(home, ".quizctl")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

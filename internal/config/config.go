package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AppName = "git-delayed"

	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Home         string        `env:"GIT_DELAYED_HOME"`
	PollInterval time.Duration `env:"GIT_DELAYED_POLL_INTERVAL" envDefault:"60s"`
	RetryDelay   time.Duration `env:"GIT_DELAYED_RETRY_DELAY" envDefault:"10m"`
	LockAttempts int           `env:"GIT_DELAYED_LOCK_ATTEMPTS" envDefault:"3"`
	LockBackoff  time.Duration `env:"GIT_DELAYED_LOCK_BACKOFF" envDefault:"200ms"`
	Backend      string        `env:"GIT_DELAYED_BACKEND" envDefault:"file"`
	LogLevel     string        `env:"GIT_DELAYED_LOG_LEVEL" envDefault:"info"`
	APIAddr      string        `env:"GIT_DELAYED_API_ADDR" envDefault:"127.0.0.1:7466"`
	Redis        Redis
}

type Redis struct {
	Addr     string `env:"GIT_DELAYED_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"GIT_DELAYED_REDIS_PASSWORD"`
	DB       int    `env:"GIT_DELAYED_REDIS_DB"`
	Prefix   string `env:"GIT_DELAYED_REDIS_PREFIX" envDefault:"git-delayed"`
}

// Load reads the environment, after merging in a .env file from the storage
// directory when one exists. Variables already set win over the file.
func Load() (*Config, error) {
	home, err := StorageDir()
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(home, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Home == "" {
		c.Home = home
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown backend %q, want %s or %s", c.Backend, BackendFile, BackendRedis)
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.RetryDelay <= 0 {
		return errors.New("retry delay must be positive")
	}
	if c.LockAttempts < 1 {
		return errors.New("lock attempts must be at least 1")
	}
	return nil
}

// StorageDir is $GIT_DELAYED_HOME, or git-delayed under the user config dir.
func StorageDir() (string, error) {
	if home := os.Getenv("GIT_DELAYED_HOME"); home != "" {
		return home, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Path joins name onto the storage directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.Home, name)
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Streak storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
		MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
		MaxAgeDays int    `yaml:"maxAgeDays" validate:"gte=0"`
	} `yaml:"log"`
	Content struct {
		Dir string `yaml:"dir"`
	} `yaml:"content"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" validate:"omitempty,url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Streak struct {
		Backend   string `yaml:"backend" validate:"omitempty,oneof=memory file redis postgres"`
		Dir       string `yaml:"dir" validate:"required_if=Backend file"`
		KeyPrefix string `yaml:"keyPrefix"`
	} `yaml:"streak"`
}

// Load reads YAML config from path. A missing file yields the defaults so
// the CLI works out of the box.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Content.Dir == "" {
		c.Content.Dir = "content/quizzes"
	}
	if c.Streak.Backend == "" {
		c.Streak.Backend = BackendFile
	}
	if c.Streak.Backend == BackendFile && c.Streak.Dir == "" {
		c.Streak.Dir = defaultStateDir()
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "daily-quiz"
	}
	return ".daily-quiz"
}

// Validate checks field constraints declared in struct tags.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

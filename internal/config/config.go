package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppName  string `yaml:"app_name"`
	AppEnv   string `yaml:"app_env"`
	AppPort  string `yaml:"app_port"`
	LogLevel string `yaml:"log_level"`

	DB       DBConfig       `yaml:"db"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	JWT      JWTConfig      `yaml:"jwt"`
}

type DBConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	// TTL of zero issues tokens without an exp claim.
	TTL time.Duration `yaml:"ttl"`
}

// Load builds the process configuration. Values from the YAML file named by
// CONFIG_FILE are read first and environment variables override them.
func Load() (*Config, error) {
	cfg := &Config{
		AppName:  "blog-backend",
		AppEnv:   "development",
		AppPort:  "8787",
		LogLevel: "info",
		DB: DBConfig{
			Port:    "5432",
			SSLMode: "disable",
		},
		RabbitMQ: RabbitMQConfig{
			Queue: "post_events",
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.AppName, "APP_NAME")
	setString(&c.AppEnv, "APP_ENV")
	setString(&c.AppPort, "APP_PORT")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.DB.URL, "DATABASE_URL")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSLMODE")

	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.RabbitMQ.Queue, "RABBITMQ_QUEUE")

	setString(&c.JWT.Secret, "JWT_SECRET")
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid JWT_TTL: %w", err)
		}
		c.JWT.TTL = d
	}
	return nil
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.DB.URL == "" && c.DB.Host == "" {
		return errors.New("config: DATABASE_URL or DB_HOST is required")
	}
	if c.JWT.TTL < 0 {
		return errors.New("config: JWT_TTL must not be negative")
	}
	return nil
}

// DSN returns the connection string handed to the pgx driver.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

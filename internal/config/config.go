package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Rabbit   RabbitConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RabbitConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	VHost          string
	Queue          string
	NotifyExchange string
	Prefetch       int
	Workers        int
}

// EngineConfig carries evaluation policy. Values come from the environment
// and may be overridden by the TOML file named in LEDGER_POLICY_FILE.
type EngineConfig struct {
	DefaultDailyAllowance decimal.Decimal
	DefaultTiers          []int
	DefaultCategories     []string
	EvaluateTimeout       time.Duration
}

type policyFile struct {
	DefaultDailyAllowance string   `toml:"default_daily_allowance"`
	DefaultTiers          []int    `toml:"default_tiers"`
	DefaultCategories     []string `toml:"default_categories"`
}

func Load() (*Config, error) {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	rmqPort, _ := strconv.Atoi(getEnv("RABBITMQ_PORT", "5672"))
	prefetch, _ := strconv.Atoi(getEnv("RABBITMQ_PREFETCH", "50"))
	workers, _ := strconv.Atoi(getEnv("RABBITMQ_WORKERS", "4"))
	evalTimeout, _ := strconv.Atoi(getEnv("EVALUATE_TIMEOUT_SECONDS", "30"))

	allowance, err := decimal.NewFromString(getEnv("DEFAULT_DAILY_ALLOWANCE", "500.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_DAILY_ALLOWANCE: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ledger_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Rabbit: RabbitConfig{
			Host:           getEnv("RABBITMQ_HOST", "localhost"),
			Port:           rmqPort,
			User:           getEnv("RABBITMQ_USER", "guest"),
			Password:       getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:          getEnv("RABBITMQ_VHOST", "/"),
			Queue:          getEnv("RABBITMQ_QUEUE", "ledger_events"),
			NotifyExchange: getEnv("RABBITMQ_NOTIFY_EXCHANGE", "notifications"),
			Prefetch:       prefetch,
			Workers:        workers,
		},
		Engine: EngineConfig{
			DefaultDailyAllowance: allowance,
			EvaluateTimeout:       time.Duration(evalTimeout) * time.Second,
		},
	}

	if path := getEnv("LEDGER_POLICY_FILE", ""); path != "" {
		if err := cfg.applyPolicyFile(path); err != nil {
			return nil, fmt.Errorf("failed to load policy file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// applyPolicyFile overlays the engine defaults with values from a TOML
// policy file. Missing keys leave the environment-derived values in place.
func (c *Config) applyPolicyFile(path string) error {
	var policy policyFile
	if _, err := toml.DecodeFile(path, &policy); err != nil {
		return err
	}

	if policy.DefaultDailyAllowance != "" {
		allowance, err := decimal.NewFromString(policy.DefaultDailyAllowance)
		if err != nil {
			return fmt.Errorf("invalid default_daily_allowance: %w", err)
		}
		c.Engine.DefaultDailyAllowance = allowance
	}
	if len(policy.DefaultTiers) > 0 {
		c.Engine.DefaultTiers = policy.DefaultTiers
	}
	if len(policy.DefaultCategories) > 0 {
		c.Engine.DefaultCategories = policy.DefaultCategories
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

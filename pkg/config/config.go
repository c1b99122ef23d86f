// Package config loads gateway configuration from a YAML file with
// environment variable overrides for the deployment-specific values.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level"`      // debug, info, warn, error
	File       string `yaml:"file"`       // optional log file, console only if empty
	MaxSize    int    `yaml:"maxSize"`    // max size per log file (MB)
	MaxBackups int    `yaml:"maxBackups"` // rotated files to keep
	MaxAge     int    `yaml:"maxAge"`     // days to keep rotated files
	Compress   bool   `yaml:"compress"`   // gzip rotated files
}

// StoreConfig selects the order store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory (default) or sqlite
	Path   string `yaml:"path"`   // sqlite db file path
}

// BrokerConfig describes the Kafka topics the gateway talks to. StatusTopics
// maps an exchange region name to its status-update topic; the set is
// open-ended, one entry per region.
type BrokerConfig struct {
	Brokers      []string          `yaml:"brokers"`
	GroupID      string            `yaml:"groupId"`
	OrderTopic   string            `yaml:"orderTopic"`
	StatusTopics map[string]string `yaml:"statusTopics"`
	PriceTopic   string            `yaml:"priceTopic"`
}

// Config is the gateway configuration.
type Config struct {
	Listen string       `yaml:"listen"`
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Broker BrokerConfig `yaml:"broker"`
}

// Default returns the configuration used when no file is given. The topic
// names follow the exchange simulator's layout: one status topic per regional
// exchange plus a single consolidated price topic.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log: LogConfig{
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "data/orders.db",
		},
		Broker: BrokerConfig{
			Brokers:    []string{"localhost:9092"},
			GroupID:    "stockgate",
			OrderTopic: "stocks.orders",
			StatusTopics: map[string]string{
				"stuttgart": "stocks.orderStatus.stuttgart",
				"frankfurt": "stocks.orderStatus.frankfurt",
			},
			PriceTopic: "stocks.updates.all",
		},
	}
}

// Load reads the config file at path, falling back to Default for anything
// not set. An empty path returns the defaults. Environment overrides are
// applied last in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKGATE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("STOCKGATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCKGATE_KAFKA_BROKERS"); v != "" {
		cfg.Broker.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("STOCKGATE_KAFKA_GROUP"); v != "" {
		cfg.Broker.GroupID = v
	}
	if v := os.Getenv("STOCKGATE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("STOCKGATE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite driver")
	}
	if len(c.Broker.Brokers) == 0 {
		return fmt.Errorf("broker.brokers must not be empty")
	}
	for region, topic := range c.Broker.StatusTopics {
		if topic == "" {
			return fmt.Errorf("status topic for region %q is empty", region)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"DraftPulse/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled   bool     `yaml:"enabled"`
		Brokers   []string `yaml:"brokers"`
		Topic     string   `yaml:"topic"`
		LogsTopic string   `yaml:"logs_topic"`
	} `yaml:"kafka"`
	OddsAPI struct {
		APIKey             string        `yaml:"api_key"`
		BaseURL            string        `yaml:"base_url"`
		Regions            string        `yaml:"regions"`
		Markets            string        `yaml:"markets"`
		Timeout            time.Duration `yaml:"timeout"`
		MinRequestInterval time.Duration `yaml:"min_request_interval"`
		UseMock            bool          `yaml:"use_mock"`
	} `yaml:"oddsapi"`
	Cache struct {
		Duration time.Duration `yaml:"duration"`
		File     string        `yaml:"file"`
	} `yaml:"cache"`
	Draft struct {
		EventDate string `yaml:"event_date"`
	} `yaml:"draft"`
	Scheduler struct {
		Enabled bool `yaml:"enabled"`
		Tiers   []struct {
			Name       string        `yaml:"name"`
			Every      time.Duration `yaml:"every"`
			HourStart  int           `yaml:"hour_start"`
			HourEnd    int           `yaml:"hour_end"`
			DaysBefore int           `yaml:"days_before"`
		} `yaml:"tiers"`
	} `yaml:"scheduler"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. A local .env file, when present, is read first so secrets
// like the odds API key stay out of config.yaml.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		c.OddsAPI.APIKey = v
	}
	if v := os.Getenv("ODDS_API_BASE_URL"); v != "" {
		c.OddsAPI.BaseURL = v
	}
	if v := os.Getenv("USE_MOCK_DATA"); v != "" {
		c.OddsAPI.UseMock = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("DRAFT_EVENT_DATE"); v != "" {
		c.Draft.EventDate = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.OddsAPI.APIKey == "" && !c.OddsAPI.UseMock && os.Getenv("ODDS_API_KEY") == "" {
		return fmt.Errorf("oddsapi.api_key is required unless oddsapi.use_mock is set")
	}
	if c.Draft.EventDate != "" {
		if _, err := time.Parse("2006-01-02", c.Draft.EventDate); err != nil {
			return fmt.Errorf("draft.event_date must be YYYY-MM-DD: %w", err)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	for _, t := range c.Scheduler.Tiers {
		if t.Name == "" {
			return fmt.Errorf("scheduler tier name is required")
		}
		if t.Every <= 0 {
			return fmt.Errorf("scheduler tier %q interval must be positive", t.Name)
		}
	}
	return nil
}

// EventDate parses draft.event_date, returning ok=false when unset.
func (c *Config) EventDate() (time.Time, bool) {
	if c.Draft.EventDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", c.Draft.EventDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

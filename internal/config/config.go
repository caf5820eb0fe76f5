package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigPathEnv = "STOREFRONT_CONFIG_PATH"

var ErrUsage = errors.New("invalid parameters")

type AppConfig struct {
	SimulationConfig SimulationConfig `yaml:"simulation"`
	LoggingConfig    LoggingConfig    `yaml:"logging"`
}

type SimulationConfig struct {
	Capacity         int           `yaml:"capacity" env:"STOREFRONT_CAPACITY" env-default:"5"`
	Consumers        int           `yaml:"consumers" env:"STOREFRONT_CONSUMERS" env-default:"3"`
	Quota            int           `yaml:"quota" env:"STOREFRONT_QUOTA" env-default:"10"`
	ProducerMaxDelay time.Duration `yaml:"producer_max_delay" env:"STOREFRONT_PRODUCER_MAX_DELAY" env-default:"200ms"`
	ConsumerMaxDelay time.Duration `yaml:"consumer_max_delay" env:"STOREFRONT_CONSUMER_MAX_DELAY" env-default:"1s"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" env:"STOREFRONT_LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"STOREFRONT_LOG_ENCODING" env-default:"console"`
	Output   string `yaml:"output" env:"STOREFRONT_LOG_OUTPUT" env-default:"stdout"`
}

// Load reads the config file at path, or the file named by STOREFRONT_CONFIG_PATH
// when path is empty. Without a file only defaults and environment are used.
func Load(path string) *AppConfig {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	if path == "" {
		return LoadFromEnv()
	}

	return LoadFromPath(path)
}

func LoadFromEnv() *AppConfig {
	var cfg AppConfig

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}

func LoadFromPath(configPath string) *AppConfig {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg AppConfig

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

// ApplyArgs overrides capacity, consumers and quota with the positional
// arguments <buffer_size> <num_consumers> <max_items>.
func (c *SimulationConfig) ApplyArgs(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: expected 3 arguments, got %d", ErrUsage, len(args))
	}

	values := make([]int, len(args))
	for i, arg := range args {
		value, err := ParseCount(arg)
		if err != nil {
			return err
		}
		values[i] = value
	}

	c.Capacity, c.Consumers, c.Quota = values[0], values[1], values[2]

	return c.Validate()
}

func (c *SimulationConfig) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: buffer size must be at least 1, got %d", ErrUsage, c.Capacity)
	}

	if c.Consumers < 0 {
		return fmt.Errorf("%w: consumers count cannot be negative, got %d", ErrUsage, c.Consumers)
	}

	if c.Quota < 0 {
		return fmt.Errorf("%w: items count cannot be negative, got %d", ErrUsage, c.Quota)
	}

	if c.Consumers == 0 && c.Quota > c.Capacity {
		return fmt.Errorf("%w: no consumers to buy %d items from a shelf of %d", ErrUsage, c.Quota, c.Capacity)
	}

	if c.ProducerMaxDelay < 0 || c.ConsumerMaxDelay < 0 {
		return fmt.Errorf("%w: delays cannot be negative", ErrUsage)
	}

	return nil
}

func ParseCount(val string) (int, error) {
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: not an integer: %q", ErrUsage, val)
	}

	if count < 0 {
		return 0, fmt.Errorf("%w: must be a positive integer: %d", ErrUsage, count)
	}

	return count, nil
}

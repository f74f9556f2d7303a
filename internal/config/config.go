package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/currency"
)

const envPrefix = "STOREFRONT_"

type Config struct {
	App struct {
		Name string `koanf:"name"`
	} `koanf:"app"`

	Store struct {
		Currency          string `koanf:"currency"`
		LowStockThreshold int    `koanf:"low_stock_threshold"`
	} `koanf:"store"`

	Postgres struct {
		DSN      string `koanf:"dsn"`
		MaxConns int32  `koanf:"max_conns"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Rabbit struct {
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		ReportTopic string   `koanf:"report_topic"`
	} `koanf:"kafka"`

	Notifications struct {
		Enabled    bool          `koanf:"enabled"`
		MaxCached  int           `koanf:"max_cached"`
		MaxAge     time.Duration `koanf:"max_age"`
		Workers    int           `koanf:"workers"`
		BufferSize int           `koanf:"buffer_size"`
		MaxRetries uint64        `koanf:"max_retries"`
	} `koanf:"notifications"`

	Reports struct {
		Enabled   bool          `koanf:"enabled"`
		MaxCached int           `koanf:"max_cached"`
		MaxAge    time.Duration `koanf:"max_age"`
		Timezone  string        `koanf:"timezone"`
	} `koanf:"reports"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`

	Otel struct {
		Endpoint string `koanf:"endpoint"`
		Insecure bool   `koanf:"insecure"`
	} `koanf:"otel"`
}

// Load reads <dir>/base.yaml, then the optional <dir>/<envName>.yaml, then STOREFRONT_*
// environment variables with __ separating nested keys, e.g. STOREFRONT_POSTGRES__DSN.
func Load(dir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", dir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	if envName != "" {
		// missing env file is fine for local runs
		_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", dir, envName)), yaml.Parser())
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn required")
	}
	if _, err := c.StoreCurrency(); err != nil {
		return err
	}
	if c.Store.LowStockThreshold < 0 {
		return fmt.Errorf("store.low_stock_threshold must not be negative")
	}
	if _, err := c.ReportLocation(); err != nil {
		return err
	}
	if c.Notifications.Enabled && c.Redis.Addr == "" && c.Rabbit.URL == "" {
		return fmt.Errorf("notifications enabled but neither redis.addr nor rabbitmq.url is set")
	}
	return nil
}

func (c Config) StoreCurrency() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Store.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("store.currency[%s]: %w", c.Store.Currency, err)
	}
	return unit, nil
}

// ReportLocation is the zone calendar days are cut in; empty means UTC.
func (c Config) ReportLocation() (*time.Location, error) {
	if c.Reports.Timezone == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return nil, fmt.Errorf("reports.timezone[%s]: %w", c.Reports.Timezone, err)
	}
	return loc, nil
}

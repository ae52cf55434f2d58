package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Rabbit struct {
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers      []string `koanf:"brokers"`
		GroupID      string   `koanf:"group_id"`
		PaymentTopic string   `koanf:"payment_topic"`
	} `koanf:"kafka"`

	AddressBook struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"address_book"`

	// Checkout holds the defaults for the system-parameter keys; live values
	// come from the system_parameters table and fall back to these.
	Checkout struct {
		TTLSeconds         int           `koanf:"ttl_seconds"`
		MaxItems           int           `koanf:"max_items"`
		MaxQuantityPerItem int           `koanf:"max_quantity_per_item"`
		UseRedis           bool          `koanf:"use_redis"`
		ExpiryCheckSeconds int           `koanf:"expiry_check_interval_seconds"`
		OrderIDPrefix      string        `koanf:"order_id_prefix"`
		PaymentCodePrefix  string        `koanf:"payment_code_prefix"`
		ParamCacheTTL      time.Duration `koanf:"param_cache_ttl"`
	} `koanf:"checkout"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix CHECKOUTAPI_, nested with __)
	// e.g. CHECKOUTAPI_MYSQL__DSN, CHECKOUTAPI_REDIS__PASSWORD
	if err := k.Load(env.Provider("CHECKOUTAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CHECKOUTAPI_")
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
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required")
	}
	if c.Checkout.TTLSeconds <= 0 {
		return fmt.Errorf("checkout.ttl_seconds must be positive")
	}
	if c.Checkout.ExpiryCheckSeconds <= 0 {
		return fmt.Errorf("checkout.expiry_check_interval_seconds must be positive")
	}
	return nil
}

// Package config содержит логику чтения конфигурации сервиса прогрессии.
//
// Источники применяются в порядке возрастания приоритета: значения по умолчанию,
// YAML-файл, флаги командной строки, переменные окружения.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
	DriverMemory   = "memory"
)

const (
	defaultRunAddress  = "localhost:8080"
	defaultSQLitePath  = "moneywise.db"
	defaultBadgerPath  = "moneywise-badger"
	defaultLevelUpMode = "approximate"
)

// Config содержит параметры конфигурации сервиса прогрессии.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS" yaml:"run_address"`
	StoreDriver string `env:"STORE_DRIVER" yaml:"store_driver"`
	DatabaseURI string `env:"DATABASE_URI" yaml:"database_uri"`
	StorePath   string `env:"STORE_PATH" yaml:"store_path"`
	APIToken    string `env:"API_TOKEN" yaml:"api_token"`
	LevelUpMode string `env:"LEVEL_UP_MODE" yaml:"level_up_mode"`
	Timezone    string `env:"TIMEZONE" yaml:"timezone"`
	ConfigPath  string `env:"CONFIG_PATH" yaml:"-"`
}

// Parse считывает конфигурацию из файла, флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	var envCfg Config
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	var flagCfg Config
	flag.StringVar(&flagCfg.RunAddress, "a", "", "address and port for HTTP server (default "+defaultRunAddress+")")
	flag.StringVar(&flagCfg.StoreDriver, "s", "", "store driver: sqlite, postgres, badger or memory (default "+DriverSQLite+")")
	flag.StringVar(&flagCfg.DatabaseURI, "d", "", "database URI for the postgres driver")
	flag.StringVar(&flagCfg.StorePath, "p", "", "file or directory for the sqlite and badger drivers")
	flag.StringVar(&flagCfg.APIToken, "t", "", "bearer token required by the API")
	flag.StringVar(&flagCfg.LevelUpMode, "l", "", "level-up detection mode: approximate or tracked")
	flag.StringVar(&flagCfg.Timezone, "z", "", "IANA time zone for calendar days (default local)")
	flag.StringVar(&flagCfg.ConfigPath, "c", "", "path to YAML config file")

	flag.Parse()

	cfg := &Config{
		RunAddress:  defaultRunAddress,
		StoreDriver: DriverSQLite,
		LevelUpMode: defaultLevelUpMode,
	}

	configPath := flagCfg.ConfigPath
	if envCfg.ConfigPath != "" {
		configPath = envCfg.ConfigPath
	}
	if configPath != "" {
		if err := loadFile(configPath, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigPath = configPath
	}

	cfg.merge(flagCfg)
	cfg.merge(envCfg)

	if cfg.StorePath == "" {
		switch cfg.StoreDriver {
		case DriverSQLite:
			cfg.StorePath = defaultSQLitePath
		case DriverBadger:
			cfg.StorePath = defaultBadgerPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverBadger:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for the %s driver", c.StoreDriver)
		}
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return errors.New("database URI is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location возвращает часовой пояс для сравнения календарных дат.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// merge переносит непустые значения из src.
func (c *Config) merge(src Config) {
	if src.RunAddress != "" {
		c.RunAddress = src.RunAddress
	}
	if src.StoreDriver != "" {
		c.StoreDriver = src.StoreDriver
	}
	if src.DatabaseURI != "" {
		c.DatabaseURI = src.DatabaseURI
	}
	if src.StorePath != "" {
		c.StorePath = src.StorePath
	}
	if src.APIToken != "" {
		c.APIToken = src.APIToken
	}
	if src.LevelUpMode != "" {
		c.LevelUpMode = src.LevelUpMode
	}
	if src.Timezone != "" {
		c.Timezone = src.Timezone
	}
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var fileCfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg.merge(fileCfg)
	return nil
}

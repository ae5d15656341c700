// config - загрузка конфигурации клиента carctl.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// ENV перекрывает значения из файла.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения логгера.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Драйверы хранилища сессии.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig      `yaml:"api"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Storage  StorageConfig  `yaml:"storage"`
	Tokens   TokensConfig   `yaml:"tokens"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Selector SelectorConfig `yaml:"selector"`
}

// APIConfig - адрес REST-бэкенда.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8080"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"carctl"`
}

// TimeoutConfig - дедлайн одного запроса к бэкенду (если у ctx его нет).
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
}

// StorageConfig - где живёт пара токенов.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	// Path - файл сессии для driver=file; пусто - каталог конфигурации пользователя.
	Path     string `yaml:"path"      env:"STORAGE_PATH"`
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	Prefix   string `yaml:"prefix"    env:"STORAGE_PREFIX" env-default:"carmarket:session:"`
}

// TokensConfig - декодер payload: builtin или jwt.
type TokensConfig struct {
	Decoder string `yaml:"decoder" env:"TOKEN_DECODER" env-default:"builtin"`
}

// CatalogConfig - справочник марок и моделей.
type CatalogConfig struct {
	// DatasetPath - json/yaml; пусто - встроенный справочник.
	DatasetPath  string `yaml:"dataset_path"  env:"DATASET_PATH"`
	DefaultLimit int    `yaml:"default_limit" env:"DEFAULT_LIMIT" env-default:"10"`
}

// SelectorConfig - поведение селекторов.
type SelectorConfig struct {
	PageSize        int           `yaml:"page_size"        env:"SELECTOR_PAGE_SIZE"  env-default:"10"`
	Debounce        time.Duration `yaml:"debounce"         env:"SELECTOR_DEBOUNCE"   env-default:"300ms"`
	ScrollThreshold int           `yaml:"scroll_threshold" env:"SCROLL_THRESHOLD"    env-default:"50"`
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету источников и валидирует её.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		// ReadConfig сам накладывает ENV поверх файла.
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config %q: %w", p, err)
		}

		return nil
	}

	switch {
	// 1) --config
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}

	// 2) CONFIG_PATH
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}

	// 3) ./local.yaml
	case fileExists("local.yaml"):
		if err := readFile("local.yaml"); err != nil {
			return nil, err
		}

	// 4) только ENV
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// validate - базовая валидация значений.
func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("env must be one of local|dev|prod, got %q", c.Env)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) url, got %q", c.API.BaseURL)
	}

	if c.Timeouts.Request < 0 {
		return fmt.Errorf("timeouts.request must be >= 0")
	}

	switch c.Storage.Driver {
	case StorageMemory, StorageFile:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for driver=redis")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory|file|redis, got %q", c.Storage.Driver)
	}

	switch c.Tokens.Decoder {
	case "builtin", "jwt":
	default:
		return fmt.Errorf("tokens.decoder must be builtin or jwt, got %q", c.Tokens.Decoder)
	}

	if c.Catalog.DefaultLimit <= 0 {
		return fmt.Errorf("catalog.default_limit must be > 0")
	}
	if c.Selector.PageSize <= 0 {
		return fmt.Errorf("selector.page_size must be > 0")
	}
	if c.Selector.Debounce < 0 {
		return fmt.Errorf("selector.debounce must be >= 0")
	}
	if c.Selector.ScrollThreshold < 0 {
		return fmt.Errorf("selector.scroll_threshold must be >= 0")
	}

	return nil
}

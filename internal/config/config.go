// config реализует конфигурацию comments-service: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилищ.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	PostsPostgres = "postgres"
	PostsStatic   = "static"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	DB        DBConfig        `yaml:"db"`
	Posts     PostsConfig     `yaml:"posts"`
	Cache     CacheConfig     `yaml:"cache"`
	Verify    VerifyConfig    `yaml:"verify"`
	Limits    LimitsConfig    `yaml:"limits"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig — публичный REST-сервер (API + health/metrics).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50084"`
	// CORSOrigins — Origin фронта блога; пусто — CORS выключен.
	CORSOrigins []string `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:","`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// StorageConfig — выбор реализации хранилища комментариев.
type StorageConfig struct {
	// mongo — боевой вариант; memory — для локального запуска без БД.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// PostsConfig — источник постов блога (только чтение, поиск по slug).
type PostsConfig struct {
	Driver string `yaml:"driver" env:"POSTS_DRIVER" env-default:"postgres"`
	URL    string `yaml:"url" env:"POSTS_DATABASE_URL"`
	// Migrations — каталог SQL-миграций, применяемых при старте; пусто — не применять.
	Migrations string `yaml:"migrations" env:"POSTS_MIGRATIONS"`
	// Static — slug -> id, используется при driver=static.
	Static map[string]string `yaml:"static" env:"POSTS_STATIC" env-separator:","`
}

// CacheConfig — Redis-кэш поиска поста по slug. Пустой RedisURL отключает кэш.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
	Prefix   string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"comments:post:"`
}

// VerifyConfig — внешний сервис проверки «человек/бот» (siteverify).
type VerifyConfig struct {
	URL     string        `yaml:"url" env:"VERIFY_URL" env-default:"https://www.google.com/recaptcha/api/siteverify"`
	Secret  string        `yaml:"secret" env:"VERIFY_SECRET"`
	Timeout time.Duration `yaml:"timeout" env:"VERIFY_TIMEOUT" env-default:"5s"`
}

// LimitsConfig — структурные лимиты.
type LimitsConfig struct {
	// Максимальная глубина ветки. Корень = 1.
	MaxDepth int `yaml:"max_depth" env:"MAX_DEPTH" env-default:"3"`
	// Максимальная длина текста комментария в рунах.
	MaxContent int `yaml:"max_content" env:"MAX_CONTENT" env-default:"5000"`
}

// ReconcileConfig — восстановление обратных ссылок parent -> child_ids.
type ReconcileConfig struct {
	OnStart bool `yaml:"on_start" env:"RECONCILE_ON_START" env-default:"false"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}

		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
			break
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMongo:
		if c.DB.URL == "" {
			return fmt.Errorf("db.url is required for storage.driver=mongo")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q", StorageMongo, StorageMemory)
	}

	switch c.Posts.Driver {
	case PostsPostgres:
		if c.Posts.URL == "" {
			return fmt.Errorf("posts.url is required for posts.driver=postgres")
		}
	case PostsStatic:
	default:
		return fmt.Errorf("posts.driver must be %q or %q", PostsPostgres, PostsStatic)
	}

	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}

	// Без секрета проверка возможна только локально (AllowAll).
	if c.Verify.Secret == "" && c.Env != "local" {
		return fmt.Errorf("verify.secret is required outside local env")
	}

	if c.Verify.Timeout <= 0 {
		return fmt.Errorf("verify.timeout must be > 0")
	}

	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.max_depth must be > 0")
	}

	if c.Limits.MaxDepth > 32 {
		return fmt.Errorf("limits.max_depth is too large (<= 32)")
	}

	if c.Limits.MaxContent <= 0 {
		return fmt.Errorf("limits.max_content must be > 0")
	}

	return nil
}

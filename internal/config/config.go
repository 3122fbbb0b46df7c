package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "LIFECYCLE_"

type Postgres struct {
	Address      string `koanf:"address"`
	Port         string `koanf:"port"`
	DB           string `koanf:"db"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	SSLMode      string `koanf:"sslmode"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

type ColdStore struct {
	// Driver is "postgres" or "memory".
	Driver   string        `koanf:"driver"`
	Postgres Postgres      `koanf:"postgres"`
	Timeout  time.Duration `koanf:"timeout"`
	Retries  int           `koanf:"retries"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerOpenFor  time.Duration `koanf:"breaker_open_for"`
}

type Redis struct {
	// Address empty means job locks are held in-process only.
	Address string `koanf:"address"`
}

type Kafka struct {
	// Brokers empty disables the status event hook.
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type Jobs struct {
	ArchiveInterval time.Duration `koanf:"archive_interval"`
	RestoreInterval time.Duration `koanf:"restore_interval"`
	RunTimeout      time.Duration `koanf:"run_timeout"`
	LockTTL         time.Duration `koanf:"lock_ttl"`
}

type Config struct {
	Postgres  Postgres  `koanf:"postgres"`
	ColdStore ColdStore `koanf:"coldstore"`
	Redis     Redis     `koanf:"redis"`
	Kafka     Kafka     `koanf:"kafka"`
	Jobs      Jobs      `koanf:"jobs"`
	Workers   int       `koanf:"workers"`
	HTTPPort  string    `koanf:"http_port"`
	LogLevel  string    `koanf:"log_level"`
}

// In all cases the default behavior should be for the docker compose setup.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"postgres.address":        "localhost",
		"postgres.port":           "5433",
		"postgres.db":             "postgres",
		"postgres.username":       "postgres",
		"postgres.password":       "testpassword",
		"postgres.sslmode":        "disable",
		"postgres.max_open_conns": 10,

		"coldstore.driver":                  "postgres",
		"coldstore.postgres.address":        "localhost",
		"coldstore.postgres.port":           "5434",
		"coldstore.postgres.db":             "coldstore",
		"coldstore.postgres.username":       "postgres",
		"coldstore.postgres.password":       "testpassword",
		"coldstore.postgres.sslmode":        "disable",
		"coldstore.postgres.max_open_conns": 5,
		"coldstore.timeout":                 3 * time.Second,
		"coldstore.retries":                 1,
		"coldstore.breaker_failures":        5,
		"coldstore.breaker_open_for":        30 * time.Second,

		"redis.address": "",
		"kafka.brokers": []string{},
		"kafka.topic":   "account-status-events",

		"jobs.archive_interval": time.Hour,
		"jobs.restore_interval": time.Hour,
		"jobs.run_timeout":      50 * time.Minute,
		"jobs.lock_ttl":         55 * time.Minute,

		"workers":   4,
		"http_port": "9446",
		"log_level": "info",
	}
}

// envKey maps LIFECYCLE_POSTGRES_ADDRESS to postgres.address and
// LIFECYCLE_COLDSTORE_POSTGRES_PORT to coldstore.postgres.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"coldstore_postgres_", "postgres_", "coldstore_", "redis_", "kafka_", "jobs_"} {
		if strings.HasPrefix(key, section) {
			head := strings.ReplaceAll(section[:len(section)-1], "_", ".")
			return head + "." + strings.TrimPrefix(key, section)
		}
	}
	return key
}

// ProcessEnvironmentVariables layers defaults, an optional YAML file named by
// CONFIG_FILE, and LIFECYCLE_* environment variables.
func ProcessEnvironmentVariables() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key string, value string) (string, interface{}) {
		name := envKey(key)
		if name == "kafka.brokers" {
			if value == "" {
				return name, []string{}
			}
			return name, strings.Split(value, ",")
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Jobs.ArchiveInterval <= 0 {
		errs = append(errs, errors.New("jobs.archive_interval must be positive"))
	}
	if c.Jobs.RestoreInterval <= 0 {
		errs = append(errs, errors.New("jobs.restore_interval must be positive"))
	}
	if c.Jobs.LockTTL <= 0 {
		errs = append(errs, errors.New("jobs.lock_ttl must be positive"))
	}
	if c.Jobs.RunTimeout <= 0 {
		errs = append(errs, errors.New("jobs.run_timeout must be positive"))
	} else if c.Jobs.LockTTL > 0 && c.Jobs.RunTimeout >= c.Jobs.LockTTL {
		// a run must end before its lock can expire under it
		errs = append(errs, errors.New("jobs.run_timeout must be shorter than jobs.lock_ttl"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	if c.ColdStore.Driver != "postgres" && c.ColdStore.Driver != "memory" {
		errs = append(errs, errors.New("coldstore.driver must be postgres or memory"))
	}
	if c.ColdStore.Retries < 0 {
		errs = append(errs, errors.New("coldstore.retries must not be negative"))
	}
	return errors.Join(errs...)
}

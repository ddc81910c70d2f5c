package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"projectmanager/internal/auth"
	"projectmanager/internal/domain/errors"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Addr       string     `mapstructure:"addr"`
	Port       int        `mapstructure:"port"`
	Storage    string     `mapstructure:"storage"`
	DB         DBConfig   `mapstructure:"db"`
	JWT        JWTConfig  `mapstructure:"jwt"`
	Bcrypt     Bcrypt     `mapstructure:"bcrypt"`
	Pagination Pagination `mapstructure:"pagination"`
	Log        LogConfig  `mapstructure:"log"`
}

type DBConfig struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Algorithm string        `mapstructure:"algorithm"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type Bcrypt struct {
	Cost int `mapstructure:"cost"`
}

type Pagination struct {
	MaxPerPage int `mapstructure:"max_per_page"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

const (
	defaultAddr       = "0.0.0.0"
	defaultPort       = 8080
	defaultDBStr      = "postgresql://projects:projects@db:5432/projects?sslmode=disable"
	defaultAlgorithm  = "HS256"
	defaultMaxPerPage = 100
	envPrefix         = "PROJECTS"
)

// NewViper returns a viper instance carrying every default and reading
// PROJECTS_* environment variables (nested keys use "_", e.g. PROJECTS_JWT_SECRET).
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("addr", defaultAddr)
	v.SetDefault("port", defaultPort)
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("db.dsn", defaultDBStr)
	v.SetDefault("db.migrate", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.algorithm", defaultAlgorithm)
	v.SetDefault("jwt.ttl", time.Duration(0))
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)
	v.SetDefault("pagination.max_per_page", defaultMaxPerPage)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadConfig layers an optional config file over the defaults and
// environment already set on v. Flags bound to v win over both.
func ReadConfig(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w %s: %v", errors.ErrConfigFileReadFailed, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}

	if cfg.DB.DSN == defaultDBStr {
		if dsn := dsnFromParts(); dsn != "" {
			cfg.DB.DSN = dsn
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dsnFromParts builds a DSN from the discrete DB_* variables used by the
// compose setup, if all of them are present.
func dsnFromParts() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	if user == "" || password == "" || name == "" || host == "" || port == "" {
		return ""
	}
	return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=disable", user, password, net.JoinHostPort(host, port), name)
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.ErrMissingJWTSecret
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", errors.ErrConfigInvalid, c.Port)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage %q", errors.ErrConfigInvalid, c.Storage)
	}
	if c.Pagination.MaxPerPage < 1 {
		return fmt.Errorf("%w: pagination.max_per_page must be positive", errors.ErrConfigInvalid)
	}
	if c.Bcrypt.Cost < bcrypt.MinCost || c.Bcrypt.Cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt.cost must be between %d and %d", errors.ErrConfigInvalid, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.JWT.TTL < 0 {
		return fmt.Errorf("%w: jwt.ttl must not be negative", errors.ErrConfigInvalid)
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}

func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		Secret:    c.JWT.Secret,
		Algorithm: c.JWT.Algorithm,
		TTL:       c.JWT.TTL,
	}
}

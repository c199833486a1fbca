package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Model    ModelConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	ArtifactTTL   time.Duration
}

// ModelConfig selects where artifacts come from and how explanations are
// produced.
type ModelConfig struct {
	// Source is "file" or "db".
	Source  string
	Dir     string
	Version string

	// ExplainerMode is "precomputed", "on_demand" or "auto".
	ExplainerMode string
	DefaultTopN   int
}

const (
	ModelSourceFile = "file"
	ModelSourceDB   = "db"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads the server configuration. A JWT secret is required.
func Load() (*Config, error) {
	cfg, err := LoadTooling()
	if err != nil {
		return nil, err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}
	return cfg, nil
}

// LoadTooling reads the same environment for offline commands, which never
// verify tokens.
func LoadTooling() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid redis enabled flag")
	}

	artifactTTL, err := time.ParseDuration(getEnv("REDIS_ARTIFACT_TTL", "10m"))
	if err != nil {
		return nil, errors.New("invalid redis artifact ttl")
	}

	topN, err := strconv.Atoi(getEnv("MODEL_DEFAULT_TOP_N", "3"))
	if err != nil || topN < 0 {
		return nil, errors.New("invalid model default top n")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "FairFin"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "fairfin"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "fairfin.db"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Enabled:       redisEnabled,
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			ArtifactTTL:   artifactTTL,
		},
		Model: ModelConfig{
			Source:        getEnv("MODEL_SOURCE", ModelSourceFile),
			Dir:           getEnv("MODEL_DIR", "models"),
			Version:       getEnv("MODEL_VERSION", ""),
			ExplainerMode: getEnv("MODEL_EXPLAINER_MODE", "precomputed"),
			DefaultTopN:   topN,
		},
	}

	switch cfg.Model.Source {
	case ModelSourceFile:
	case ModelSourceDB:
		if cfg.Database.Driver == DriverPostgres && cfg.Database.Password == "" {
			return nil, errors.New("missing database password")
		}
	default:
		return nil, errors.New("unknown model source")
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.New("unknown database driver")
	}

	switch cfg.Model.ExplainerMode {
	case "precomputed", "on_demand", "auto":
	default:
		return nil, errors.New("unknown explainer mode")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

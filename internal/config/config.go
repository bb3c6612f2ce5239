package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. INSPECTA_DATABASE_HOST.
const EnvPrefix = "INSPECTA_"

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Minio    MinioConfig    `yaml:"minio" envPrefix:"MINIO_"`
	Uploads  UploadsConfig  `yaml:"uploads" envPrefix:"UPLOADS_"`
	AI       AIConfig       `yaml:"ai" envPrefix:"AI_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port        int      `yaml:"port" env:"PORT"`
	CORSOrigins []string `yaml:"corsOrigins" env:"CORS_ORIGINS"`
	// RateLimit is requests per second per client on the AI routes; 0 disables it.
	RateLimit float64 `yaml:"rateLimit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rateBurst" env:"RATE_BURST"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"` // mysql | postgres | sqlite
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"sslMode" env:"SSL_MODE"`
	Path     string `yaml:"path" env:"PATH"` // sqlite only
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey  string `yaml:"accessKey" env:"ACCESS_KEY"`
	SecretKey  string `yaml:"secretKey" env:"SECRET_KEY"`
	BucketName string `yaml:"bucketName" env:"BUCKET_NAME"`
	Region     string `yaml:"region" env:"REGION"`
	UseSSL     bool   `yaml:"useSSL" env:"USE_SSL"`
	// PublicURL overrides the scheme://host used when building object URLs.
	PublicURL string `yaml:"publicURL" env:"PUBLIC_URL"`
}

type UploadsConfig struct {
	// BestEffortDelete logs and ignores failures deleting the photo being replaced.
	BestEffortDelete bool  `yaml:"bestEffortDelete" env:"BEST_EFFORT_DELETE"`
	MaxBytes         int64 `yaml:"maxBytes" env:"MAX_BYTES"`
}

type AIConfig struct {
	Provider         string        `yaml:"provider" env:"PROVIDER"` // openai | anthropic
	APIKey           string        `yaml:"apiKey" env:"API_KEY"`
	BaseURL          string        `yaml:"baseURL" env:"BASE_URL"`
	Model            string        `yaml:"model" env:"MODEL"`
	MaxTokens        int           `yaml:"maxTokens" env:"MAX_TOKENS"`
	Timeout          time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxAttempts      int           `yaml:"maxAttempts" env:"MAX_ATTEMPTS"`
	BatchSize        int           `yaml:"batchSize" env:"BATCH_SIZE"`
	BatchConcurrency int           `yaml:"batchConcurrency" env:"BATCH_CONCURRENCY"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // json | console
}

// Default returns the configuration used when neither file nor env set a value.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.RateLimit = 2
	cfg.Server.RateBurst = 10
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = "inspecta.db"
	cfg.Database.SSLMode = "disable"
	cfg.Minio.BucketName = "inspection-photos"
	cfg.Uploads.BestEffortDelete = true
	cfg.Uploads.MaxBytes = 20 << 20
	cfg.AI.Provider = "openai"
	cfg.AI.Model = "gpt-4o-mini"
	cfg.AI.MaxTokens = 4096
	cfg.AI.Timeout = 60 * time.Second
	cfg.AI.MaxAttempts = 2
	cfg.AI.BatchSize = 20
	cfg.AI.BatchConcurrency = 1
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load baca file config.yaml (optional), lalu override dari environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "config: parse %s", path)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env + defaults only
	default:
		return nil, eris.Wrapf(err, "config: read %s", path)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, eris.Wrap(err, "config: parse env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the app cannot work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return eris.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return eris.Errorf("config: unsupported ai provider %q", c.AI.Provider)
	}
	if c.AI.BatchSize <= 0 {
		return eris.New("config: ai.batchSize must be positive")
	}
	if c.AI.BatchConcurrency <= 0 {
		c.AI.BatchConcurrency = 1
	}
	if c.AI.MaxAttempts <= 0 {
		c.AI.MaxAttempts = 1
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq keyword/value connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// InitLogger builds the global zap logger from the log section.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}

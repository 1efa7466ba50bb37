package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Guru       GuruConfig       `validate:"required"`
	Planilhas  PlanilhasConfig  `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

// GuruConfig holds everything needed to talk to the transactional
// platform: credentials, pacing and retry discipline, and the hard
// historical floor below which no collection is attempted.
type GuruConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required"`
	APIKey          string        `mapstructure:"api_key"`
	QPS             float64       `validate:"gt=0"`
	MaxConcurrency  int           `mapstructure:"max_concurrency" validate:"gte=1"`
	MaxPageRetries  int           `mapstructure:"max_page_retries" validate:"gte=0"`
	FetchAttempts   int           `mapstructure:"fetch_attempts" validate:"gte=1"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	HistoricalFloor string        `mapstructure:"historical_floor"`
}

// FloorDate parses the configured historical floor, falling back to
// the default lower bound when absent or malformed.
func (g GuruConfig) FloorDate() time.Time {
	if g.HistoricalFloor != "" {
		if t, err := time.Parse("2006-01-02", g.HistoricalFloor); err == nil {
			return t.UTC()
		}
	}
	return time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
}

// PlanilhasConfig locates the planilha store and the catalog/rules
// files the collection pipeline reads.
type PlanilhasConfig struct {
	Dir         string `validate:"required"`
	CatalogPath string `mapstructure:"catalog_path" validate:"required"`
	RulesPath   string `mapstructure:"rules_path" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

func NewConfig(validate *validator.Validate) (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lg-logistica")

	v.SetEnvPrefix("LGL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("guru.base_url", "https://digitalmanager.guru/api/v2")
	v.SetDefault("guru.qps", 3.0)
	v.SetDefault("guru.max_concurrency", 4)
	v.SetDefault("guru.max_page_retries", 2)
	v.SetDefault("guru.fetch_attempts", 3)
	v.SetDefault("guru.request_timeout", "15s")
	v.SetDefault("planilhas.dir", "var/planilhas")
	v.SetDefault("planilhas.catalog_path", "skus.json")
	v.SetDefault("planilhas.rules_path", "config_ofertas.json")
	v.SetDefault("logging.level", string(types.LogLevelInfo))

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(validate); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and for test suites that do not read a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Guru: GuruConfig{
			BaseURL:        "https://digitalmanager.guru/api/v2",
			QPS:            3.0,
			MaxConcurrency: 4,
			MaxPageRetries: 2,
			FetchAttempts:  3,
			RequestTimeout: 15 * time.Second,
		},
		Planilhas: PlanilhasConfig{
			Dir:         "var/planilhas",
			CatalogPath: "skus.json",
			RulesPath:   "config_ofertas.json",
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}

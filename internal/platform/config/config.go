package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"avelements/internal/enrichment"
	"avelements/internal/session"
)

// Server captures the gateway configuration.
type Server struct {
	Addr       string
	Env        string
	LogLevel   string
	AdminToken string

	// Verification carries the integration-level overrides applied to every
	// enriched form.
	Verification        enrichment.Overrides
	Origin              string
	VerifyIntl          bool
	VerificationTimeout time.Duration

	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
}

// RedisConfig configures the shared session store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the event stream. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DatabaseConfig configures the Postgres event archive. An empty URL
// disables it.
type DatabaseConfig struct {
	URL       string
	Retention time.Duration
}

// fileOverlay is the YAML file read from AV_CONFIG_FILE.
type fileOverlay struct {
	Addr         string               `yaml:"addr"`
	Env          string               `yaml:"env"`
	Origin       string               `yaml:"origin"`
	Verification enrichment.Overrides `yaml:"verification"`
}

// FromEnv builds a Server config from environment variables, then applies
// the optional YAML overlay named by AV_CONFIG_FILE. Environment variables
// win over the file.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                ":8080",
		LogLevel:            "info",
		VerificationTimeout: 4 * time.Second,
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka:    KafkaConfig{Topic: "avelements.events"},
		Database: DatabaseConfig{Retention: 30 * 24 * time.Hour},
	}

	if path := os.Getenv("AV_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Server{}, err
		}
	}

	setString(&cfg.Addr, "AV_ADDR")
	setString(&cfg.Env, "AV_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.AdminToken, "AV_ADMIN_TOKEN")
	setString(&cfg.Origin, "AV_ORIGIN")
	setString(&cfg.Verification.APIKey, "AV_API_KEY")
	setString(&cfg.Verification.Strictness, "AV_STRICTNESS")
	setString(&cfg.Redis.URL, "AV_REDIS_URL")
	setString(&cfg.Kafka.Topic, "AV_KAFKA_TOPIC")
	setString(&cfg.Database.URL, "AV_DATABASE_URL")

	if v := os.Getenv("AV_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if err := setBool(&cfg.VerifyIntl, "AV_VERIFY_INTERNATIONAL"); err != nil {
		return Server{}, err
	}
	if err := setBool(&cfg.Verification.Autosubmit, "AV_AUTOSUBMIT"); err != nil {
		return Server{}, err
	}
	if err := setDuration(&cfg.VerificationTimeout, "AV_VERIFY_TIMEOUT"); err != nil {
		return Server{}, err
	}
	// The verification lock must outlive the call it guards.
	if cfg.VerificationTimeout <= 0 || cfg.VerificationTimeout >= session.DefaultLockTTL {
		return Server{}, fmt.Errorf("AV_VERIFY_TIMEOUT: %s must be positive and below the %s verification lock",
			cfg.VerificationTimeout, session.DefaultLockTTL)
	}
	if err := setDuration(&cfg.Database.Retention, "AV_EVENT_RETENTION"); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Env != "" {
		c.Env = overlay.Env
	}
	if overlay.Origin != "" {
		c.Origin = overlay.Origin
	}
	c.Verification = overlay.Verification
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

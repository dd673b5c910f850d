package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Everything comes from the
// environment so main stays lean; a .env file is loaded by main in dev.
type Server struct {
	Addr         string
	DatabaseURL  string
	Redis        RedisConfig
	KafkaBrokers string
	AuditTopic   string
	EventKey     string
	CEPBaseURL   string
}

// RedisConfig holds connection settings for the optional Redis-backed rate
// limiter. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:         envOr("INSCRICAO_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		AuditTopic:   envOr("AUDIT_TOPIC", "inscricao.enrollments"),
		EventKey:     envOr("EVENT_KEY", "14-cursilho-2026"),
		CEPBaseURL:   envOr("CEP_BASE_URL", "https://viacep.com.br/ws"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

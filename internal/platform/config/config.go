package config

import (
	"os"
	"strings"
	"time"
)

// Config captures service level configuration.
type Config struct {
	Addr         string
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string
	FileLocation string
	DownloadURL  string
	DetailURL    string
	LogLevel     string
}

// SearchCacheTTL bounds how long a cached search response may be served.
var SearchCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:         getenv("VIGIL_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		AuditTopic:   getenv("AUDIT_TOPIC", "vigil.search.audit"),
		FileLocation: getenv("FILE_LOCATION", "public/"),
		DownloadURL:  getenv("DOWNLOAD_URL", "http://localhost:8080/search/download/"),
		DetailURL:    getenv("DETAIL_URL", "http://localhost:8080/entities/"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

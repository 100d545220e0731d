package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel string

	ReportTitle         string
	StoragePath         string
	BrandVocabularyPath string
	SummaryXLSXPath     string
	MetricsTextfilePath string

	// Optional side effects; empty disables them.
	PostgresDSN string
	NATSURL     string
	NATSSubject string

	SideEffectTimeout time.Duration

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	BreakerEnabled      bool
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "warn"),

		ReportTitle:         mustEnv("REPORT_TITLE", ""),
		StoragePath:         mustEnv("STORAGE_PATH", "."),
		BrandVocabularyPath: mustEnv("BRAND_VOCABULARY_PATH", ""),
		SummaryXLSXPath:     mustEnv("SUMMARY_XLSX_PATH", ""),
		MetricsTextfilePath: mustEnv("METRICS_TEXTFILE_PATH", ""),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),
		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "apenso.report.generated"),

		SideEffectTimeout: mustEnvDuration("SIDE_EFFECT_TIMEOUT", 10*time.Second),

		RetryMaxAttempts:    mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoff: mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", 200*time.Millisecond),
		RetryMaxBackoff:     mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", time.Second),
		BreakerEnabled:      mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

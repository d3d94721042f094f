package config

import (
	"os"
	"time"

	"lendgate/internal/policy"
)

// Server captures process-level configuration for the loan service.
type Server struct {
	Addr string
	Mode policy.Mode

	// Vendor integration.
	VendorURL     string
	VendorTimeout time.Duration
	AssessmentTTL time.Duration
	RedisURL      string

	// Audit sinks. The file sink is always on; the others are enabled by
	// configuration.
	AuditLogPath string
	PostgresDSN  string
	KafkaBrokers string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LENDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	vendorURL := os.Getenv("LENDGATE_VENDOR_URL")
	if vendorURL == "" {
		vendorURL = "http://127.0.0.1:5001"
	}

	auditLog := os.Getenv("LENDGATE_AUDIT_LOG")
	if auditLog == "" {
		auditLog = "security.log"
	}

	topic := os.Getenv("LENDGATE_KAFKA_TOPIC")
	if topic == "" {
		topic = "lendgate.audit"
	}

	return Server{
		Addr:          addr,
		Mode:          policy.ParseMode(os.Getenv("LENDGATE_POLICY_MODE")),
		VendorURL:     vendorURL,
		VendorTimeout: durationFromEnv("LENDGATE_VENDOR_TIMEOUT", 2*time.Second),
		AssessmentTTL: durationFromEnv("LENDGATE_ASSESSMENT_TTL", 5*time.Minute),
		RedisURL:      os.Getenv("LENDGATE_REDIS_URL"),
		AuditLogPath:  auditLog,
		PostgresDSN:   os.Getenv("LENDGATE_POSTGRES_DSN"),
		KafkaBrokers:  os.Getenv("LENDGATE_KAFKA_BROKERS"),
		KafkaTopic:    topic,
	}
}

// Vendor captures configuration for the standalone vendor stub binary.
type Vendor struct {
	Addr string
}

// VendorFromEnv builds the vendor stub config.
func VendorFromEnv() Vendor {
	addr := os.Getenv("LENDGATE_VENDOR_ADDR")
	if addr == "" {
		addr = ":5001"
	}
	return Vendor{Addr: addr}
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

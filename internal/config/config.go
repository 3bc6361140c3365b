package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	StoreDriver string
	MongoURI    string
	MongoDB     string
	DatabaseURL string

	JWTIssuer   string
	JWTSecret   string
	JWTTTLHours int

	ActivationSecret  string
	ActivationTTL     time.Duration
	ActivationBaseURL string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CloudinaryURL string
	UploadDir     string
	PublicBaseURL string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	KafkaBrokers []string

	CORSOrigins  []string
	CookieSecure bool
}

func Load() Config {
	return Config{
		AppEnv:   get("APP_ENV", "dev"),
		HTTPAddr: get("HTTP_ADDR", ":8000"),

		StoreDriver: get("STORE_DRIVER", "mongo"),
		MongoURI:    get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     get("MONGO_DB", "marketplace"),
		DatabaseURL: get("DATABASE_URL", ""),

		JWTIssuer:   get("JWT_ISSUER", "marketplace"),
		JWTSecret:   get("JWT_SECRET", ""),
		JWTTTLHours: getInt("JWT_TTL_HOURS", 24*7),

		ActivationSecret:  get("ACTIVATION_SECRET", ""),
		ActivationTTL:     getDuration("ACTIVATION_TTL_MIN", 60) * time.Minute,
		ActivationBaseURL: get("ACTIVATION_BASE_URL", "http://localhost:3000"),

		SMTPHost: get("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: get("SMTP_USER", ""),
		SMTPPass: get("SMTP_PASS", ""),
		SMTPFrom: get("SMTP_FROM", ""),

		CloudinaryURL: get("CLOUDINARY_URL", ""),
		UploadDir:     get("UPLOAD_DIR", "uploads"),
		PublicBaseURL: get("PUBLIC_BASE_URL", "http://localhost:8000"),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		CacheTTL:      getDuration("CACHE_TTL_MIN", 5) * time.Minute,

		KafkaBrokers: splitCSV(get("KAFKA_BROKERS", "")),

		CORSOrigins:  splitCSV(get("CORS_ORIGINS", "http://localhost:3000")),
		CookieSecure: get("COOKIE_SECURE", "false") == "true",
	}
}

func (c Config) IsProd() bool { return c.AppEnv == "prod" }

// Validate reports settings the server must not start without.
func (c Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.ActivationSecret == "" {
		missing = append(missing, "ACTIVATION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: %s must be set", strings.Join(missing, ", "))
	}
	if c.JWTSecret == c.ActivationSecret {
		return errors.New("config: JWT_SECRET and ACTIVATION_SECRET must differ")
	}
	return nil
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

// getDuration reads a whole number of units; callers multiply by the unit.
func getDuration(k string, def int) time.Duration {
	return time.Duration(getInt(k, def))
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	TokenTTL       time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	SeedSampleData bool

	LogFormat string // text|json
	LogLevel  string // debug|info|warn|error
}

func FromEnv() Config {
	ttl := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}
	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:       ttl,
		AdminName:      envOr("ADMIN_NAME", "Administrator"),
		AdminEmail:     envOr("ADMIN_EMAIL", "admin@quizdesk.local"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		SeedSampleData: envBool("SEED_SAMPLE_DATA", false),
		LogFormat:      envOr("LOG_FORMAT", "text"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is read once at startup. Every outside integration is optional; an
// empty key switches that part of the service to demo data.
type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	DataDir     string
	CallWorkers int
	// PublicURL is where the voice platform can reach this service.
	PublicURL string

	SerperBase string
	SerperKey  string

	OmniBase    string
	OmniKey     string
	OmniAgentID string

	TwilioBase  string
	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	ResendBase string
	ResendKey  string
	ResendFrom string
}

// Load reads the environment, after merging a .env file if one exists.
// Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	return FromEnv()
}

func FromEnv() Config {
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		DataDir:     env("DATA_DIR", "data"),
		CallWorkers: atoi("CALL_WORKERS", 4),
		PublicURL:   strings.TrimRight(env("PUBLIC_BASE_URL", ""), "/"),

		SerperBase: env("SERPER_BASE_URL", "https://google.serper.dev"),
		SerperKey:  env("SERPER_API_KEY", ""),

		OmniBase:    env("OMNIDIMENSION_BASE_URL", "https://api.omnidimension.ai"),
		OmniKey:     env("OMNIDIMENSION_API_KEY", ""),
		OmniAgentID: env("OMNIDIMENSION_AGENT_ID", ""),

		TwilioBase:  env("TWILIO_BASE_URL", "https://api.twilio.com"),
		TwilioSID:   env("TWILIO_ACCOUNT_SID", ""),
		TwilioToken: env("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:  env("TWILIO_PHONE_NUMBER", ""),

		ResendBase: env("RESEND_BASE_URL", "https://api.resend.com"),
		ResendKey:  env("RESEND_API_KEY", ""),
		ResendFrom: env("RESEND_FROM", ""),
	}
	if c.CallWorkers <= 0 {
		c.CallWorkers = 1
	}
	if c.SerperKey == "" {
		log.Warn().Msg("SERPER_API_KEY is empty; seller search runs on the built-in directory")
	}
	if c.OmniKey == "" && c.TwilioSID == "" {
		log.Warn().Msg("no voice provider configured; calls are simulated")
	}
	if c.ResendKey == "" {
		log.Warn().Msg("RESEND_API_KEY is empty; reports are stored, not mailed")
	}
	return c
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

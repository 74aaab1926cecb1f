package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Collaborator credentials (Stripe, Resend,
// Telegram, Hugging Face) are optional: when a key is empty the matching
// endpoint reports the collaborator as unconfigured instead of failing
// at boot.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	JWTSecret   string // secret shared with the identity provider for verifying bearer tokens
	BcryptCost  int    // bcrypt cost for admin-provisioned account passwords
	FrontendURL string // base URL for checkout redirect targets

	StripeSecretKey     string // Stripe API secret key
	StripeWebhookSecret string // Stripe webhook signing secret
	StripePriceMonthly  string // price id for the monthly plan
	StripePriceYearly   string // price id for the yearly plan

	ResendAPIKey string // Resend email API key
	EmailFrom    string // From header for outbound mail

	TelegramBotToken string // Telegram bot token for high-priority alerts
	TelegramChatID   string // Telegram group/chat id to alert

	HFAPIKey       string // Hugging Face inference API key (summaries)
	ClipCheckURL   string // text/image moderation service endpoint
	SweepInterval  int    // minutes between internal publication sweeps (0 disables the ticker)
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		JWTSecret:   must("JWT_SECRET"),
		BcryptCost:  envInt("BCRYPT_COST", 12),
		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceMonthly:  os.Getenv("STRIPE_PRICE_MONTHLY"),
		StripePriceYearly:   os.Getenv("STRIPE_PRICE_YEARLY"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    envStr("EMAIL_FROM", "Merisols Times <onboarding@resend.dev>"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT"),
		TelegramChatID:   os.Getenv("TELEGRAM_GROUPID"),

		HFAPIKey:      os.Getenv("HF_API_KEY"),
		ClipCheckURL:  envStr("CLIP_CHECK_URL", "https://maxwang36-merisols-clip-check.hf.space/clip-match"),
		SweepInterval: envInt("SWEEP_INTERVAL_MIN", 5),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

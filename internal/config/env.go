package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	Port              string
	AppURL            string
	JWTSecret         string
	SessionTTL        time.Duration
	SuiNetwork        string
	SuiRPCURL         string
	AIAPIKey          string
	GenModel          string
	GoogleClientID    string
	ZkLoginSaltURL    string
	ResendAPIKey      string
	EmailFrom         string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	MonitorInterval   time.Duration
	MonitorTxLookback int
	Production        bool
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnv("PORT", "8080"),
		AppURL:            getEnv("APP_URL", "http://localhost:8080"),
		JWTSecret:         getEnv("JWT_SECRET", "development-secret-change-me"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		SuiNetwork:        getEnv("SUI_NETWORK", "mainnet"),
		SuiRPCURL:         getEnv("SUI_RPC_URL", ""),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		ZkLoginSaltURL:    getEnv("ZKLOGIN_SALT_SERVICE_URL", "https://salt.api.mystenlabs.com/get_salt"),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		EmailFrom:         getEnv("EMAIL_FROM", "SUIscan AI <welcome@suiscan.ai>"),
		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		MonitorInterval:   getEnvDuration("MONITOR_INTERVAL", 5*time.Minute),
		MonitorTxLookback: getEnvInt("MONITOR_TX_LOOKBACK", 5),
		Production:        getEnv("APP_ENV", "development") == "production",
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

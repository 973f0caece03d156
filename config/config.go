package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
	AllowedOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Mercado Pago
	MPAccessToken string
	MPBaseURL     string

	// URLs para back_urls y notification_url de las preferencias
	FrontendURL string
	BackendURL  string

	// Job único de migración de contraseñas en texto plano.
	// Corre al arrancar cuando está activo; nunca en el path de login.
	MigratePlaintextPasswords bool

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "3001"),
		Env:            getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: []string{},
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "financial360"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_ACCESS_SECRET", "default-access-secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default-refresh-secret"),
		JWTAccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),

		MPAccessToken: getEnv("MP_ACCESS_TOKEN", ""),
		MPBaseURL:     getEnv("MP_BASE_URL", "https://api.mercadopago.com"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:3001"),

		MigratePlaintextPasswords: getEnvAsBool("MIGRATE_PLAINTEXT_PASSWORDS", false),

		LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", time.Minute),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		cfg.TrustedProxies = strings.Split(proxies, ",")
	}

	log.Printf("📋 Configuración cargada: puerto=%s, modo=%s, BD=%s, MPTokenSet=%v",
		cfg.Port, cfg.Env, cfg.DBName, cfg.MPAccessToken != "")
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strVal := getEnv(key, "")
	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

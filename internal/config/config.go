// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Database settings
	DBPath string

	// NATS settings
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings (session tokens)
	JWTSecret     string
	JWTExpiration time.Duration

	// Text generation settings
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ContextPreamble string

	// Dialogue settings
	Greeting         string
	InfoRequestDelay time.Duration
	InfoRequestAfter int

	// Lead notification settings
	NotifyURL   string
	NotifyToken string

	// Hand-off channel settings
	WhatsAppNumber   string
	WhatsAppGreeting string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Database
		DBPath: getEnv("DB_PATH", "data/chat-widget.db"),

		// NATS
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),

		// Text generation
		Provider:        getEnv("GENERATION_PROVIDER", "gemini"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash-preview-05-20"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ContextPreamble: getEnv("CONTEXT_PREAMBLE", defaultPreamble),

		// Dialogue
		Greeting:         getEnv("CHAT_GREETING", "👋 Hello! I'm Vybrant AI Assistant. How can I help you today?"),
		InfoRequestDelay: getDurationEnv("INFO_REQUEST_DELAY", time.Second),
		InfoRequestAfter: getIntEnv("INFO_REQUEST_AFTER", 2),

		// Lead notification
		NotifyURL:   getEnv("NOTIFY_URL", ""),
		NotifyToken: getEnv("NOTIFY_TOKEN", ""),

		// Hand-off
		WhatsAppNumber:   getEnv("WHATSAPP_NUMBER", "447828402043"),
		WhatsAppGreeting: getEnv("WHATSAPP_GREETING", "Hello! I'd like to ask about your services."),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

const defaultPreamble = "You are Vybrant AI Assistant, the friendly support assistant " +
	"for Vybrant Care, a home-care provider. Answer questions about care services, " +
	"visiting care, live-in care and staffing warmly and concisely. If you do not " +
	"know an answer, suggest speaking to the care team."

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

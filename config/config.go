package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port               int
	TwilioPort         int    // Port for the SMS webhook server (used when ServerType is "both")
	ServerType         string // "websocket", "twilio", or "both"
	RedisURL           string // Empty disables the Redis mirror
	RedisPassword      string
	MaxSessions        int
	SessionTimeout     time.Duration
	AllowedOrigins     []string
	KeepAlivePeriod    time.Duration
	MaxTranscriptTurns int // Turns kept per session transcript

	GeminiAPIKey string // Optional; without it only the keyword classifier runs
	GeminiModel  string

	CataloguePath       string
	RulesPath           string // Empty selects the built-in rules
	DatasetPath         string // Labelled dialog acts; trains the naive Bayes classifier
	AllowRestart        bool
	LevenshteinDistance int // 0 selects the length-based threshold
	Formal              bool
	Caps                bool
	Debug               bool // Echo classified act and state to clients
	LogLevel            string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:               8080,
		TwilioPort:         8081,
		ServerType:         "websocket",
		RedisURL:           "localhost:6379",
		RedisPassword:      "",
		MaxSessions:        100,
		SessionTimeout:     30 * time.Minute,
		AllowedOrigins:     []string{"*"},
		KeepAlivePeriod:    30 * time.Second,
		MaxTranscriptTurns: 200,
		GeminiModel:        "gemini-2.5-flash",
		CataloguePath:      "data/restaurant_info.csv",
		Formal:             true,
		LogLevel:           "info",
	}

	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// Optional: GEMINI_MODEL
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: REDIS_URL ("none" disables Redis)
	if redisURL, ok := os.LookupEnv("REDIS_URL"); ok {
		if redisURL == "none" {
			redisURL = ""
		}
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: KEEPALIVE_PERIOD (in seconds)
	if keepalive := os.Getenv("KEEPALIVE_PERIOD"); keepalive != "" {
		k, err := strconv.Atoi(keepalive)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEPALIVE_PERIOD: %w", err)
		}
		config.KeepAlivePeriod = time.Duration(k) * time.Second
	}

	// Optional: MAX_TRANSCRIPT_TURNS
	if turns := os.Getenv("MAX_TRANSCRIPT_TURNS"); turns != "" {
		n, err := strconv.Atoi(turns)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_TRANSCRIPT_TURNS: %w", err)
		}
		config.MaxTranscriptTurns = n
	}

	// Optional: SERVER_TYPE ("websocket", "twilio", or "both")
	if serverType := os.Getenv("SERVER_TYPE"); serverType != "" {
		switch serverType {
		case "websocket", "twilio", "both":
			config.ServerType = serverType
		default:
			return nil, fmt.Errorf("invalid SERVER_TYPE: must be 'websocket', 'twilio', or 'both'")
		}
	}

	// Optional: TWILIO_PORT (used when SERVER_TYPE is "both")
	if twilioPort := os.Getenv("TWILIO_PORT"); twilioPort != "" {
		tp, err := strconv.Atoi(twilioPort)
		if err != nil {
			return nil, fmt.Errorf("invalid TWILIO_PORT: %w", err)
		}
		config.TwilioPort = tp
	}

	// Optional: CATALOGUE_PATH, RULES_PATH
	if path := os.Getenv("CATALOGUE_PATH"); path != "" {
		config.CataloguePath = path
	}
	if path := os.Getenv("RULES_PATH"); path != "" {
		config.RulesPath = path
	}

	// Optional: DATASET_PATH
	if path := os.Getenv("DATASET_PATH"); path != "" {
		config.DatasetPath = path
	}

	// Optional: LEVENSHTEIN_DISTANCE (0 = length-based threshold)
	if distance := os.Getenv("LEVENSHTEIN_DISTANCE"); distance != "" {
		d, err := strconv.Atoi(distance)
		if err != nil {
			return nil, fmt.Errorf("invalid LEVENSHTEIN_DISTANCE: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid LEVENSHTEIN_DISTANCE: must not be negative")
		}
		config.LevenshteinDistance = d
	}

	// Optional flags: ALLOW_RESTART, FORMAL, CAPS, DEBUG
	flags := []struct {
		key string
		dst *bool
	}{
		{"ALLOW_RESTART", &config.AllowRestart},
		{"FORMAL", &config.Formal},
		{"CAPS", &config.Caps},
		{"DEBUG", &config.Debug},
	}
	for _, f := range flags {
		if v := os.Getenv(f.key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = b
		}
	}

	// Optional: LOG_LEVEL ("debug", "info", "warn", "error")
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			config.LogLevel = strings.ToLower(level)
		default:
			return nil, fmt.Errorf("invalid LOG_LEVEL: must be 'debug', 'info', 'warn', or 'error'")
		}
	}

	return config, nil
}

package app

import (
	"os"
	"strconv"
	"strings"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	HTTPAddr            string
	DataDir             string
	CSRFEnforced        bool
	AuthRateLimitPerMin int
	SessionTTLMinutes   int

	// Staff login passcodes, bcrypt-hashed.
	AdminPassHash   string
	TeacherPassHash string

	GeminiAPIKey string
	GeminiModel  string

	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubPath   string
}

func LoadConfig() Config {
	return Config{
		AppEnv:              envOrDefault("APP_ENV", "development"),
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		DataDir:             envOrDefault("DATA_DIR", "data"),
		CSRFEnforced:        boolOrDefault("CSRF_ENFORCED", false),
		AuthRateLimitPerMin: intOrDefault("AUTH_RATE_LIMIT_PER_MINUTE", 60),
		SessionTTLMinutes:   intOrDefault("SESSION_TTL_MINUTES", 720),
		AdminPassHash:       os.Getenv("ADMIN_PASS_HASH"),
		TeacherPassHash:     os.Getenv("TEACHER_PASS_HASH"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:         os.Getenv("GITHUB_OWNER"),
		GitHubRepo:          os.Getenv("GITHUB_REPO"),
		GitHubBranch:        envOrDefault("GITHUB_BRANCH", "main"),
		GitHubPath:          envOrDefault("GITHUB_PATH", "data/problems.json"),
	}
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsToInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func intOrDefault(key string, fallback int) int {
	v := stringsToInt(os.Getenv(key))
	if v <= 0 {
		return fallback
	}
	return v
}

func boolOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

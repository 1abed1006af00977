package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	// Backend selects the datastore implementation: memory, firestore or postgres.
	Backend     string
	DatabaseURL string
	AutoMigrate bool

	FirebaseProject        string
	FirebaseCredentialJSON string
	FirebaseCredentialPath string
	StorageBucket          string

	// AuthProvider selects token verification: firebase or jwt.
	AuthProvider string
	JWTSecret    string
	JWTExpiry    int64

	SearchDebounceMS int64
	AllowedOrigins   []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Backend:     getEnv("BACKEND", "memory"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",

		FirebaseProject:        getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:          getEnv("STORAGE_BUCKET", ""),

		AuthProvider: getEnv("AUTH_PROVIDER", "jwt"),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:    getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours

		SearchDebounceMS: getEnvAsInt64("SEARCH_DEBOUNCE_MS", 300),
		AllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesFirebase reports whether a Firebase app has to be initialised.
func (c *Config) UsesFirebase() bool {
	return c.Backend == "firestore" || c.AuthProvider == "firebase" || c.StorageBucket != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings helps parse duration suffixes
	"time"    // time.Duration for token lifetimes

	"github.com/joho/godotenv" // optional .env file support for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token lifetimes are expressed as duration
// strings in the environment ("15m", "7d") and parsed once here — they are
// never re-derived at verify time.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	AccessSecret   string        // secret used to sign access tokens
	RefreshSecret  string        // secret used to sign refresh tokens
	AccessTTL      time.Duration // access token lifetime
	RefreshTTL     time.Duration // refresh token lifetime
	SessionTTL     time.Duration // session row lifetime
	BcryptCost     int           // bcrypt cost for password hashing
	GoogleClientID string        // OAuth client id for Google ID token audience checks
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file is loaded first when present.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using system environment")
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		AccessSecret:   must("JWT_ACCESS_SECRET"),
		RefreshSecret:  must("JWT_REFRESH_SECRET"),
		AccessTTL:      mustTTL("ACCESS_TOKEN_TTL"),  // e.g. "15m"
		RefreshTTL:     mustTTL("REFRESH_TOKEN_TTL"), // e.g. "7d"
		SessionTTL:     parseTTL(getenv("SESSION_TTL", "24h")),
		BcryptCost:     mustInt("BCRYPT_COST"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"), // empty disables Google login
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustTTL is like must() but parses the value as a duration string.
func mustTTL(key string) time.Duration {
	s := must(key)
	d := parseTTL(s)
	if d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}

// parseTTL parses a duration string.  On top of the standard units it
// accepts a "d" day suffix ("7d" -> 168h) because refresh lifetimes are
// conventionally written in days.  Returns 0 on malformed input.
func parseTTL(s string) time.Duration {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

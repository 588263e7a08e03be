package config // package config loads application configuration from environment variables

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token lifetimes are kept in seconds because the
// issued tokens advertise an `expires_in` value in seconds and the ephemeral
// store TTLs must match the token lifetimes exactly.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign JWTs
	AccessTTLSec  int    // access token time-to-live in seconds
	RefreshTTLSec int    // refresh token time-to-live in seconds
	BcryptCost    int    // bcrypt cost for password hashing
	BaseURL       string // public base URL used in verification/reset links
}

// Single-use action token lifetimes.  These are fixed by the token contract
// rather than configurable: clients and emails assume a 24 hour verification
// window and a 1 hour reset window.
const (
	VerificationTTLSec  = 86400 // email verification token, 24 hours
	PasswordResetTTLSec = 3600  // password reset token, 1 hour
)

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Lifetimes and cost
// fall back to sane defaults when unset.
func Load() Config {
	return Config{
		Env:           getenv("APP_ENV", "dev"),                       // environment (dev/test/prod)
		Port:          getenv("APP_PORT", "8000"),                     // port to bind the HTTP server
		DBUser:        must("DB_USER"),                                // database user
		DBPass:        os.Getenv("DB_PASS"),                           // database password (empty allowed)
		DBHost:        must("DB_HOST"),                                // database host
		DBPort:        must("DB_PORT"),                                // database port
		DBName:        must("DB_NAME"),                                // database name
		JWTSecret:     must("JWT_SECRET"),                             // secret used for signing JWTs
		AccessTTLSec:  getenvInt("JWT_EXPIRATION", 3600),              // access token TTL, default 1 hour
		RefreshTTLSec: getenvInt("REFRESH_TOKEN_EXPIRATION", 2592000), // refresh token TTL, default 30 days
		BcryptCost:    getenvInt("BCRYPT_COST", 12),                   // bcrypt cost factor
		BaseURL:       getenv("APP_BASE_URL", "http://localhost:8000"),
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

// getenv returns the value of an optional environment variable or the
// provided default when it is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value into an integer.  An
// unparsable value is treated as a configuration mistake and aborts startup;
// silently falling back could shorten or stretch token lifetimes.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

// Config is the typed view of the environment.
type Config struct {
	Port            string
	Driver          string
	DatabaseURL     string
	AuthProvider    string
	RoleFallback    string
	FirebaseProject string
	StorageBucket   string
	Credentials     string
	FrontendURL     string
	AdminURL        string
	SessionTTL      time.Duration
	AdminEmail      string
	AdminPassword   string
}

func LoadEnv() error {
	// A missing .env is fine; production sets variables directly.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

func Load() *Config {
	ttl, err := time.ParseDuration(GetEnv("SESSION_TTL", "12h"))
	if err != nil || ttl <= 0 {
		log.Printf("WARNING: invalid SESSION_TTL %q, using 12h", os.Getenv("SESSION_TTL"))
		ttl = 12 * time.Hour
	}

	return &Config{
		Port:            GetEnv("PORT", "8080"),
		Driver:          strings.ToLower(GetEnv("DOCSTORE_DRIVER", DriverMemory)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AuthProvider:    strings.ToLower(GetEnv("AUTH_PROVIDER", AuthLocal)),
		RoleFallback:    strings.ToLower(GetEnv("ROLE_FALLBACK", "deny")),
		FirebaseProject: os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),
		Credentials:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FrontendURL:     os.Getenv("FRONTEND_URL"),
		AdminURL:        os.Getenv("ADMIN_URL"),
		SessionTTL:      ttl,
		AdminEmail:      GetEnv("ADMIN_EMAIL", "admin@restochain.local"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
}

// UsesSQL reports whether the document store lives in a SQL database.
func (c *Config) UsesSQL() bool {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return true
	}
	return false
}

// UsesFirebase reports whether any component needs the Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.Driver == DriverFirestore || c.AuthProvider == AuthFirebase || c.StorageBucket != ""
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	return Load().Validate()
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverFirestore, DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.Driver)
	}
	switch c.AuthProvider {
	case AuthLocal, AuthFirebase:
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	if c.RoleFallback != "deny" && c.RoleFallback != "customer" {
		return fmt.Errorf("ROLE_FALLBACK must be deny or customer, got %q", c.RoleFallback)
	}

	var missing []string
	if c.AuthProvider == AuthLocal && os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.UsesSQL() && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if (c.Driver == DriverFirestore || c.AuthProvider == AuthFirebase) && c.FirebaseProject == "" && c.Credentials == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if c.StorageBucket == "" {
		log.Println("WARNING: FIREBASE_STORAGE_BUCKET not set - image uploads are disabled")
	}
	if c.FrontendURL == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}
	if c.AdminURL == "" {
		log.Println("WARNING: ADMIN_URL not set")
	}
	if c.AdminPassword == "" {
		log.Println("WARNING: ADMIN_PASSWORD not set - default admin gets a generated password")
	}
	if c.Driver == DriverMemory {
		log.Println("WARNING: DOCSTORE_DRIVER is memory - data is lost on restart")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

package config

import (
	"testing"
	"time"
)

func TestLoadEnv(t *testing.T) {
	// LoadEnv returns nil when no .env file exists
	err := LoadEnv()
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DOCSTORE_DRIVER", "AUTH_PROVIDER", "ROLE_FALLBACK", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %s", cfg.Driver)
	}
	if cfg.AuthProvider != AuthLocal {
		t.Errorf("expected local auth, got %s", cfg.AuthProvider)
	}
	if cfg.RoleFallback != "deny" {
		t.Errorf("expected deny fallback, got %s", cfg.RoleFallback)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected 12h ttl, got %v", cfg.SessionTTL)
	}
}

func TestLoadInvalidTTLFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	if ttl := Load().SessionTTL; ttl != 12*time.Hour {
		t.Errorf("expected 12h fallback, got %v", ttl)
	}
}

func TestValidateEnvAllSet(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DOCSTORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "test-db-url")
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("ROLE_FALLBACK", "")

	if err := ValidateEnv(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvMissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DOCSTORE_DRIVER", "memory")
	t.Setenv("AUTH_PROVIDER", "local")

	if err := ValidateEnv(); err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestValidateEnvMissingDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DOCSTORE_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "")

	if err := ValidateEnv(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidateEnvFirebaseNeedsProject(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "firebase")
	t.Setenv("DOCSTORE_DRIVER", "firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if err := ValidateEnv(); err == nil {
		t.Error("expected error for missing FIREBASE_PROJECT_ID")
	}

	t.Setenv("FIREBASE_PROJECT_ID", "resto-chain")
	if err := ValidateEnv(); err != nil {
		t.Errorf("expected nil with project set, got %v", err)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"driver", Config{Driver: "redis", AuthProvider: AuthLocal, RoleFallback: "deny"}},
		{"auth", Config{Driver: DriverMemory, AuthProvider: "ldap", RoleFallback: "deny"}},
		{"fallback", Config{Driver: DriverMemory, AuthProvider: AuthLocal, RoleFallback: "admin"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUsesSQLAndFirebase(t *testing.T) {
	if !(&Config{Driver: DriverSQLite}).UsesSQL() {
		t.Error("sqlite should use SQL")
	}
	if (&Config{Driver: DriverFirestore}).UsesSQL() {
		t.Error("firestore should not use SQL")
	}
	if !(&Config{Driver: DriverMemory, StorageBucket: "b"}).UsesFirebase() {
		t.Error("a storage bucket needs the firebase app")
	}
	if (&Config{Driver: DriverMemory, AuthProvider: AuthLocal}).UsesFirebase() {
		t.Error("memory + local should not need firebase")
	}
}

func TestGetEnvExisting(t *testing.T) {
	t.Setenv("TEST_GET_ENV_KEY", "test-value")

	result := GetEnv("TEST_GET_ENV_KEY", "default")
	if result != "test-value" {
		t.Errorf("expected 'test-value', got '%s'", result)
	}
}

func TestGetEnvMissing(t *testing.T) {
	t.Setenv("TEST_GET_ENV_MISSING", "")
	result := GetEnv("TEST_GET_ENV_MISSING", "fallback")
	if result != "fallback" {
		t.Errorf("expected 'fallback', got '%s'", result)
	}
}

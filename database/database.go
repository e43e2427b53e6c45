package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported SQL driver %q", driver)
}

// Connect opens the SQL database that backs the document store.
func Connect(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// One writer at a time; concurrent sqlite writers fail with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&docstore.Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

// CreateDefaultAdmin registers the admin account with the identity provider
// and writes its profile. An existing admin with that email is left alone.
// An empty password gets a random one, logged once.
func CreateDefaultAdmin(ctx context.Context, provider auth.Provider, store docstore.Store, email, password string) error {
	var existing []models.User
	if err := store.Where(ctx, docstore.Users, "email", email, &existing); err != nil {
		return err
	}
	for _, u := range existing {
		if u.Role == models.RoleAdmin {
			return nil
		}
	}

	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	id, err := provider.SignUp(ctx, email, password)
	if errors.Is(err, auth.ErrEmailTaken) {
		log.Printf("WARNING: %s is registered but has no admin profile; skipping admin seed", email)
		return nil
	}
	if err != nil {
		return err
	}

	admin := models.User{
		Email:     id.Email,
		Role:      models.RoleAdmin,
		FullName:  "Admin User",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Set(ctx, docstore.Doc(docstore.Users, id.UID), &admin); err != nil {
		return err
	}

	if generated {
		log.Printf("Default admin created: %s (generated password: %s)", id.Email, password)
	} else {
		log.Printf("Default admin created: %s", id.Email)
	}
	return nil
}

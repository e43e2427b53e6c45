package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restochain-backend/auth"
	"restochain-backend/config"
	"restochain-backend/database"
	"restochain-backend/docstore"
	"restochain-backend/firebase"
	"restochain-backend/inventory"
	"restochain-backend/models"
	"restochain-backend/routes"
	"restochain-backend/session"
	"restochain-backend/utils"

	fb "firebase.google.com/go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "restochain",
		Short:        "Restaurant chain backend: branches, menu, stock and orders",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the document table for SQL drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	var branchID string
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check stock records against their history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reconcile(cmd.Context(), branchID)
		},
	}
	reconcileCmd.Flags().StringVar(&branchID, "branch", "", "Only check this branch")

	root.AddCommand(serveCmd, migrateCmd, reconcileCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and validates the environment.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}
	return cfg, nil
}

// openStore connects the configured document store. The Firebase app is
// returned when any component needs it.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, *fb.App, error) {
	var app *fb.App
	if cfg.UsesFirebase() {
		var err error
		app, err = firebase.Init(ctx, cfg.FirebaseProject, cfg.StorageBucket, cfg.Credentials)
		if err != nil {
			return nil, nil, err
		}
	}

	switch {
	case cfg.UsesSQL():
		db, err := database.Connect(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return docstore.NewGormStore(db), app, nil
	case cfg.Driver == config.DriverFirestore:
		client, err := firebase.NewFirestoreClient(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		return docstore.NewFirestoreStore(client), app, nil
	default:
		return docstore.NewMemoryStore(), app, nil
	}
}

func newProvider(ctx context.Context, cfg *config.Config, store docstore.Store, app *fb.App) (auth.Provider, error) {
	if cfg.AuthProvider == config.AuthFirebase {
		return firebase.NewAuthProvider(ctx, app)
	}
	return auth.NewLocalProvider(store), nil
}

func corsOrigins(cfg *config.Config) []string {
	var origins []string
	for _, o := range []string{cfg.FrontendURL, cfg.AdminURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		log.Println("WARNING: No CORS origins configured, defaulting to http://localhost:3000")
	}
	return origins
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy, err := session.ParsePolicy(cfg.RoleFallback)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, app, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing document store: %v", err)
		} else {
			log.Println("Document store closed")
		}
	}()

	provider, err := newProvider(ctx, cfg, store, app)
	if err != nil {
		return err
	}

	if err := database.CreateDefaultAdmin(ctx, provider, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: Could not create default admin: %v", err)
	}

	sessions := session.NewManager(store, policy, cfg.SessionTTL)
	defer sessions.Close()

	jobs := utils.NewJobStore()

	r := gin.Default()

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Store:    store,
		Provider: provider,
		Sessions: sessions,
		Storage:  firebase.NewStorageClient(app, cfg.StorageBucket),
		Jobs:     jobs,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s (store: %s, auth: %s)", cfg.Port, cfg.Driver, cfg.AuthProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited gracefully")
	return nil
}

func migrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.UsesSQL() {
		log.Printf("DOCSTORE_DRIVER %s needs no migration", cfg.Driver)
		return nil
	}
	db, err := database.Connect(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Println("Migrations applied")
	return nil
}

// reconcile prints every discrepancy as JSON and fails when any is found.
func reconcile(ctx context.Context, branchID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, _, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	branchIDs := []string{branchID}
	if branchID == "" {
		var branches []models.Branch
		if err := store.List(ctx, docstore.Branches, &branches); err != nil {
			return err
		}
		branchIDs = branchIDs[:0]
		for _, b := range branches {
			branchIDs = append(branchIDs, b.ID)
		}
	}

	ledger := inventory.NewLedger(store)
	found := []inventory.Discrepancy{}
	for _, id := range branchIDs {
		d, err := ledger.Reconcile(ctx, id)
		if err != nil {
			return fmt.Errorf("branch %s: %w", id, err)
		}
		found = append(found, d...)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(found); err != nil {
		return err
	}
	if len(found) > 0 {
		return fmt.Errorf("%d stock records disagree with their history", len(found))
	}
	log.Printf("Checked %d branches, stock matches history", len(branchIDs))
	return nil
}

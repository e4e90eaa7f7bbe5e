package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chronoManager/internal/config"
	grpcserver "chronoManager/internal/grpc"
	"chronoManager/models"
	"chronoManager/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	// Open the store; initialization errors are fatal only here, in the host.
	store, err := repository.Open(cfg.Database.DataDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	if err := ensureAdmin(store, cfg.Admin); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// Start gRPC
	shutdown, err := grpcserver.StartGRPC(cfg, store)
	if err != nil {
		log.Fatalf("start grpc: %v", err)
	}
	log.Printf("gRPC server listening on %s", cfg.GRPC.Address)

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// ensureAdmin creates the configured admin user if it does not exist yet.
func ensureAdmin(store *repository.Store, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := store.GetUserByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := store.AddUser(ctx, &models.User{Name: admin.Name, Email: admin.Email, Role: models.RoleAdmin}); err != nil {
		return err
	}
	log.Printf("Created admin user %s", admin.Email)
	return nil
}

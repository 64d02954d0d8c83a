package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/lab-portal/internal/config"
	"github.com/hongminglow/lab-portal/internal/server"
	"github.com/hongminglow/lab-portal/internal/storage"
	"github.com/hongminglow/lab-portal/internal/storage/files"
	"github.com/hongminglow/lab-portal/internal/storage/memory"
	"github.com/hongminglow/lab-portal/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	defer closeStore()

	uploads, err := files.NewLocal(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		log.Fatalf("init uploads: %v", err)
	}

	srv, err := server.New(cfg, store, uploads)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	go func() {
		log.Printf("lab portal listening on %s (storage: %s)", cfg.HTTPAddress(), cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Println("using in-memory storage; data is lost on restart")
		s := memory.New()
		return s, s.Close, nil
	}
	s, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}

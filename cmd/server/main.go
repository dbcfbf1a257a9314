package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/karwan-dev/cafe-menu/app/menu"
	"github.com/karwan-dev/cafe-menu/app/upload"
	"github.com/karwan-dev/cafe-menu/cfg"
	"github.com/karwan-dev/cafe-menu/models"
	"github.com/karwan-dev/cafe-menu/storage"
)

const envLocal = "local"

func main() {
	config, err := cfg.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	log := setupLogger(config.App.Env)

	db, err := gorm.Open(postgres.Open(config.Postgres.DSN()), &gorm.Config{})
	if err != nil {
		log.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.MenuItem{}); err != nil {
		log.Error("migrating schema", "error", err)
		os.Exit(1)
	}

	blobStore, serveLocal, err := newBlobStore(config.Storage)
	if err != nil {
		log.Error("configuring storage", "error", err)
		os.Exit(1)
	}

	menuHandler := menu.NewMenuHandler(models.NewMenuRepository(db), log)
	uploadHandler := upload.NewUploadHandler(blobStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /menu", menuHandler.HandleList)
	mux.HandleFunc("POST /menu", menuHandler.HandleCreate)
	mux.HandleFunc("PUT /menu", menuHandler.HandleUpdate)
	mux.HandleFunc("DELETE /menu", menuHandler.HandleDelete)
	mux.HandleFunc("POST /upload", uploadHandler.HandlePost)
	if serveLocal {
		mux.Handle("GET "+config.Storage.PublicPath+"/", http.StripPrefix(
			config.Storage.PublicPath+"/",
			http.FileServer(http.Dir(config.Storage.UploadsDir)),
		))
	}

	srv := &http.Server{
		Addr:              config.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", config.HTTP.Addr, "storage", config.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutting down", "error", err)
	}
	log.Info("server gracefully stopped")
}

// newBlobStore selects the storage backend once at startup. The second
// return value reports whether uploads must also be served from disk.
func newBlobStore(s cfg.Storage) (storage.BlobStore, bool, error) {
	if s.Backend == "s3" {
		store, err := storage.NewObjectStore(
			s.S3.Endpoint, s.S3.AccessKey, s.S3.SecretKey, s.S3.Bucket, s.S3.PublicBaseURL,
		)
		return store, false, err
	}
	store, err := storage.NewLocal(s.UploadsDir, s.PublicPath)
	return store, true, err
}

func setupLogger(env string) *slog.Logger {
	if env == envLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

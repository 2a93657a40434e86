package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rfinnegan/boxroom/internal/backup"
	"github.com/rfinnegan/boxroom/internal/database"
	"github.com/rfinnegan/boxroom/internal/email"
	"github.com/rfinnegan/boxroom/internal/logging"
	"github.com/rfinnegan/boxroom/internal/server"
	"github.com/rfinnegan/boxroom/internal/sharing"
)

func main() {
	logger := logging.Setup(os.Getenv("BOXROOM_LOG_LEVEL"))

	port := os.Getenv("BOXROOM_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("BOXROOM_DB_PATH")
	if dbPath == "" {
		dbPath = "boxroom.db"
	}

	baseURL := os.Getenv("BOXROOM_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// First run creates the household with a default home and label set.
	sharingSvc := sharing.NewService(db, logger.With("component", "sharing"))
	householdID, err := sharingSvc.EnsureBootstrap()
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	logger.Info("household ready", "household_id", householdID)

	emailClient := email.NewClient(
		os.Getenv("BOXROOM_POSTMARK_TOKEN"),
		os.Getenv("BOXROOM_FROM_EMAIL"),
		baseURL,
	)

	var backupMgr *backup.Manager
	if passphrase := os.Getenv("BOXROOM_BACKUP_PASSPHRASE"); passphrase != "" {
		backupDir := os.Getenv("BOXROOM_BACKUP_DIR")
		if backupDir == "" {
			backupDir = "backups"
		}
		backupMgr, err = backup.NewManager(db, backup.Config{
			DBPath:        dbPath,
			Dir:           backupDir,
			Passphrase:    passphrase,
			IntervalHours: envInt("BOXROOM_BACKUP_INTERVAL_HOURS", 24),
			RetentionDays: envInt("BOXROOM_BACKUP_RETENTION_DAYS", 30),
			S3: backup.S3Config{
				Endpoint:  os.Getenv("BOXROOM_S3_ENDPOINT"),
				Region:    os.Getenv("BOXROOM_S3_REGION"),
				Bucket:    os.Getenv("BOXROOM_S3_BUCKET"),
				AccessKey: os.Getenv("BOXROOM_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("BOXROOM_S3_SECRET_KEY"),
				Prefix:    os.Getenv("BOXROOM_S3_PREFIX"),
			},
		}, logger)
		if err != nil {
			logger.Error("backup manager init failed", "error", err)
			os.Exit(1)
		}
		backupMgr.Start()
		defer backupMgr.Stop()
	}

	srv := server.New(db, emailClient, backupMgr, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("boxroom starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

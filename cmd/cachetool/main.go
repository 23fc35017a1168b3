package main

import (
	"context"
	"database/sql"
	"ev-route-planner/internal/adapters/cache"
	"ev-route-planner/internal/config"
	"ev-route-planner/internal/platform/db"
	"ev-route-planner/internal/platform/logging"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = "usage: cachetool init | purge [older-than, e.g. 72h]"

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}
	logging.Setup(config.Get("PLANNER_LOG_LEVEL", "info"), config.Get("PLANNER_LOG_FORMAT", "text"))

	databaseURL := config.Get("PLANNER_CACHE_DATABASE_URL", os.Getenv("DATABASE_URL"))
	if strings.TrimSpace(databaseURL) == "" {
		logrus.Fatal("PLANNER_CACHE_DATABASE_URL or DATABASE_URL is required")
	}
	if len(os.Args) < 2 {
		logrus.Fatal(usage)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		logrus.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := runCommand(ctx, conn, os.Args[1], os.Args[2:]); err != nil {
		logrus.Error(err)
		conn.Close()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, conn *sql.DB, cmd string, args []string) error {
	switch cmd {
	case "init":
		logrus.Info("Initializing suggestion cache schema...")
		if err := cache.InitSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		logrus.Info("Schema ready.")
		return nil

	case "purge":
		olderThan := 24 * time.Hour
		if ttl := config.Get("PLANNER_CACHE_TTL", ""); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				return fmt.Errorf("purge: PLANNER_CACHE_TTL: %w", err)
			}
			olderThan = d
		}
		if len(args) > 0 {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			olderThan = d
		}

		n, err := cache.Purge(ctx, conn, olderThan)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		logrus.WithFields(logrus.Fields{"removed": n, "older_than": olderThan}).Info("Purge complete.")
		return nil

	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usage)
	}
}

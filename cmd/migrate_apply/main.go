package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
)

// Applies internal/migrations/*.sql to DATABASE_URL. Without -apply it only
// lists the files.
func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil || len(files) == 0 {
		logger.Fatal("no migrations found", "dir", *dir, "error", err)
	}
	sort.Strings(files)

	if !*apply {
		for _, f := range files {
			fmt.Println(filepath.Base(f))
		}
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			logger.Fatal("read migration", "file", f, "error", err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			logger.Fatal("apply migration", "file", f, "error", err)
		}
		logger.Info("applied migration", "file", filepath.Base(f))
	}
}

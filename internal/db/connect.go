package db

import (
	"context"
	"fmt"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

const connectTimeout = 10 * time.Second

// Connect opens a pgx pool and checks it answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connected")
	return pool, nil
}

// Redis returns a client for addr, or nil when addr is empty.
func Redis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// OpenStore connects the task store selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.TaskStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var (
		store repository.TaskStore
		err   error
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		var pool *pgxpool.Pool
		if pool, err = Connect(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		if store, err = repository.NewTaskRepository(pool, cfg.Collection); err != nil {
			pool.Close()
			return nil, err
		}
	case config.BackendMongo:
		store, err = repository.NewMongoTaskRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Collection)
	case config.BackendRedis:
		store, err = repository.NewRedisTaskRepository(Redis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.Collection)
	case config.BackendSQLite:
		store, err = repository.NewSQLiteTaskRepository(cfg.SQLitePath, cfg.Collection)
	case config.BackendMySQL:
		store, err = repository.NewMySQLTaskRepository(cfg.MySQLDSN, cfg.Collection)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping %s store: %w", cfg.StoreBackend, err)
	}
	logger.Info("task store ready", "backend", cfg.StoreBackend, "collection", cfg.Collection)
	return store, nil
}

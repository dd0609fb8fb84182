package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS %s (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT    NOT NULL UNIQUE,
	text      TEXT    NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	deadline  TEXT    NOT NULL
)`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS %s (
	seq       BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
	id        VARCHAR(36) NOT NULL UNIQUE,
	text      TEXT        NOT NULL,
	completed BOOLEAN     NOT NULL DEFAULT FALSE,
	deadline  VARCHAR(32) NOT NULL
)`

// SQLTaskRepository is the database/sql flavour of the store, used with
// SQLite for local sessions and tests and with MySQL. Ids are UUIDs.
type SQLTaskRepository struct {
	db    *sql.DB
	table string
}

// NewSQLiteTaskRepository opens path (":memory:" works) and creates the table.
func NewSQLiteTaskRepository(path, collection string) (*SQLTaskRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: an in-memory database lives and dies with it
	db.SetMaxOpenConns(1)
	return newSQLTaskRepository(db, sqliteSchema, collection)
}

// NewMySQLTaskRepository connects with clientFoundRows so an update that
// rewrites identical values still counts as a match.
func NewMySQLTaskRepository(dsn, collection string) (*SQLTaskRepository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return newSQLTaskRepository(db, mysqlSchema, collection)
}

func newSQLTaskRepository(db *sql.DB, schema, collection string) (*SQLTaskRepository, error) {
	if err := checkCollection(collection); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(fmt.Sprintf(schema, collection)); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %s: %w", collection, err)
	}
	return &SQLTaskRepository{db: db, table: collection}, nil
}

func (r *SQLTaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, text, completed, deadline FROM %s ORDER BY seq`, r.table))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.Deadline); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *SQLTaskRepository) Create(ctx context.Context, d domain.Draft) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, text, completed, deadline) VALUES (?, ?, ?, ?)`, r.table), id, d.Text, false, d.Deadline)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

func (r *SQLTaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.exec(ctx, id, fmt.Sprintf(`UPDATE %s SET completed = ? WHERE id = ?`, r.table), completed, id)
}

func (r *SQLTaskRepository) SetFields(ctx context.Context, id, text, deadline string) error {
	return r.exec(ctx, id, fmt.Sprintf(`UPDATE %s SET text = ?, deadline = ? WHERE id = ?`, r.table), text, deadline, id)
}

func (r *SQLTaskRepository) Remove(ctx context.Context, id string) error {
	return r.exec(ctx, id, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table), id)
}

// exec runs a single-record write and maps "no row touched" to ErrTaskNotFound.
func (r *SQLTaskRepository) exec(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write task %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *SQLTaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLTaskRepository) Close() error {
	return r.db.Close()
}

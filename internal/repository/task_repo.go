package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository keeps tasks as JSONB documents in Postgres.
// Schema: internal/migrations/001_documents.sql.
type TaskRepository struct {
	db         *pgxpool.Pool
	collection string
}

func NewTaskRepository(db *pgxpool.Pool, collection string) (*TaskRepository, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return &TaskRepository{db: db, collection: collection}, nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, body FROM documents WHERE collection = $1 ORDER BY seq`, r.collection)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		var (
			id   string
			body []byte
			doc  document
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", id, err)
		}
		res = append(res, doc.task(id))
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, d domain.Draft) (string, error) {
	body, err := json.Marshal(document{Text: d.Text, Deadline: d.Deadline})
	if err != nil {
		return "", err
	}
	var id string
	err = r.db.QueryRow(ctx, `INSERT INTO documents (collection, body) VALUES ($1, $2::jsonb) RETURNING id::text`, r.collection, string(body)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

// docID parses id for the (collection, id) key. Anything that is not a
// UUID cannot name a stored task.
func docID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, notFound(id)
	}
	return u, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	key, err := docID(id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE documents SET body = body || jsonb_build_object('completed', $3::boolean) WHERE collection = $1 AND id = $2`, r.collection, key, completed)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *TaskRepository) SetFields(ctx context.Context, id, text, deadline string) error {
	key, err := docID(id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE documents SET body = body || jsonb_build_object('text', $3::text, 'deadline', $4::text) WHERE collection = $1 AND id = $2`, r.collection, key, text, deadline)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *TaskRepository) Remove(ctx context.Context, id string) error {
	key, err := docID(id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, r.collection, key)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *TaskRepository) Close() error {
	r.db.Close()
	return nil
}

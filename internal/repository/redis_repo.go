package repository

import (
	"context"
	"fmt"
	"strconv"

	"todo_webapp/internal/domain"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisTaskRepository keeps each task in a hash <collection>:<id> and the
// insertion order in the sorted set <collection>:index.
type RedisTaskRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTaskRepository(rdb *redis.Client, collection string) (*RedisTaskRepository, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return &RedisTaskRepository{rdb: rdb, prefix: collection}, nil
}

func (r *RedisTaskRepository) key(id string) string { return r.prefix + ":" + id }
func (r *RedisTaskRepository) indexKey() string    { return r.prefix + ":index" }
func (r *RedisTaskRepository) seqKey() string      { return r.prefix + ":seq" }

func (r *RedisTaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	ids, err := r.rdb.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	res := make([]domain.Task, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// index entry without a hash; skip it
			continue
		}
		completed, err := strconv.ParseBool(fields["completed"])
		if err != nil {
			return nil, fmt.Errorf("decode task %s: %w", id, err)
		}
		res = append(res, domain.Task{
			ID:        id,
			Text:      fields["text"],
			Completed: completed,
			Deadline:  fields["deadline"],
		})
	}
	return res, nil
}

func (r *RedisTaskRepository) Create(ctx context.Context, d domain.Draft) (string, error) {
	seq, err := r.rdb.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	id := uuid.NewString()
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(id), "text", d.Text, "completed", "false", "deadline", d.Deadline)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

func (r *RedisTaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.set(ctx, id, "completed", strconv.FormatBool(completed))
}

func (r *RedisTaskRepository) SetFields(ctx context.Context, id, text, deadline string) error {
	return r.set(ctx, id, "text", text, "deadline", deadline)
}

// hsetExisting writes fields only when the hash is there, so a concurrent
// Remove cannot leave a record behind without its index entry.
var hsetExisting = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

func (r *RedisTaskRepository) set(ctx context.Context, id string, values ...any) error {
	n, err := hsetExisting.Run(ctx, r.rdb, []string{r.key(id)}, values...).Int()
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *RedisTaskRepository) Remove(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.key(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *RedisTaskRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisTaskRepository) Close() error {
	return r.rdb.Close()
}

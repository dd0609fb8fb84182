package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_webapp/internal/config"
	"todo_webapp/internal/countdown"
	"todo_webapp/internal/db"
	httpserver "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"
)

func applyMigrations(t *testing.T, dsn string) {
	t.Helper()
	pool, err := db.Connect(context.Background(), dsn)
	require.NoError(t, err)
	defer pool.Close()

	files, err := filepath.Glob(filepath.Join("..", "migrations", "*.sql"))
	require.NoError(t, err)
	for _, f := range files {
		b, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = pool.Exec(context.Background(), string(b))
		require.NoError(t, err, "apply migration %s", f)
	}
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// server wires the whole app the way cmd/app does, on top of store.
func server(t *testing.T, cfg *config.Config, store repository.TaskStore) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := ws.NewHub()
	board := service.NewBoard(store, service.WithQuotePicker(func() string { return "nice" }))
	require.NoError(t, board.Load(ctx))

	engine := countdown.NewEngine(board, 20*time.Millisecond, countdown.WithLocation(time.UTC))
	board.Subscribe(func(ev service.Event) {
		if ev.ChangesCollection() {
			engine.Rebuild()
		}
	})
	t.Cleanup(hub.Attach(board, engine))
	t.Cleanup(hub.Close)
	go engine.Run(ctx)

	middleware.InitRedisRateLimiter(nil)
	r := gin.New()
	r.Use(middleware.Metrics())
	h := handlers.NewHandler(board, service.NewConfirmTokens("e2e", time.Minute), time.UTC)
	httpserver.RegisterRoutes(r, h, handlers.NewHealthHandler(store, hub, "e2e"), hub, cfg)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Less(t, res.StatusCode, 300, "%s %s -> %d", method, url, res.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func waitFor(t *testing.T, conn *websocket.Conn, typ string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %s", typ)
		if f.Type == typ && (match == nil || match(f.Payload)) {
			return f.Payload
		}
	}
}

func runE2E(t *testing.T, cfg *config.Config) {
	logger.Discard()
	gin.SetMode(gin.TestMode)

	store, err := db.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := server(t, cfg, store)
	api := srv.URL + "/api/v1"

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, conn, ws.MsgReady, nil)

	created := call(t, http.MethodPost, api+"/tasks", gin.H{"text": "e2e task", "deadline": "2999-01-01T00:00"})
	id := created["id"].(string)

	waitFor(t, conn, ws.MsgSnapshot, func(p json.RawMessage) bool {
		var snap ws.SnapshotPayload
		_ = json.Unmarshal(p, &snap)
		for _, task := range snap.Tasks {
			if task.ID == id {
				return true
			}
		}
		return false
	})
	waitFor(t, conn, ws.MsgCountdown, func(p json.RawMessage) bool {
		var cd ws.CountdownPayload
		_ = json.Unmarshal(p, &cd)
		return cd.Labels[id] != ""
	})

	call(t, http.MethodPatch, api+"/tasks/"+id+"/toggle", nil)
	var party ws.CelebratePayload
	require.NoError(t, json.Unmarshal(waitFor(t, conn, ws.MsgCelebrate, nil), &party))
	assert.Equal(t, id, party.Task.ID)
	assert.Equal(t, "nice", party.Quote)

	token := call(t, http.MethodPost, api+"/tasks/"+id+"/delete-intent", nil)["token"].(string)
	call(t, http.MethodDelete, api+"/tasks/"+id+"?confirm="+token, nil)

	// the store agrees with the board
	tasks, err := store.ListAll(context.Background())
	require.NoError(t, err)
	for _, task := range tasks {
		assert.NotEqual(t, id, task.ID)
	}
}

func TestE2E_SQLite(t *testing.T) {
	runE2E(t, &config.Config{
		StoreBackend:         config.BackendSQLite,
		SQLitePath:           filepath.Join(t.TempDir(), "e2e.db"),
		Collection:           "tasks",
		APIRateLimit:         1000,
		APIRateWindowSeconds: 60,
		FrontendDir:          t.TempDir(),
	})
}

func TestE2E_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	applyMigrations(t, dsn)
	runE2E(t, &config.Config{
		StoreBackend:         config.BackendPostgres,
		DatabaseURL:          dsn,
		Collection:           "e2e_" + strings.ReplaceAll(time.Now().Format("150405.000"), ".", ""),
		APIRateLimit:         1000,
		APIRateWindowSeconds: 60,
		FrontendDir:          t.TempDir(),
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limited(h gin.HandlerFunc) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", h, func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return httptest.NewServer(r)
}

func hit(t *testing.T, url string) int {
	t.Helper()
	res, err := http.Get(url + "/test")
	require.NoError(t, err)
	res.Body.Close()
	return res.StatusCode
}

func TestSimpleRateLimit(t *testing.T) {
	srv := limited(SimpleRateLimit(2, time.Minute))
	defer srv.Close()

	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 429, hit(t, srv.URL))
}

func TestSimpleRateLimitWindowResets(t *testing.T) {
	srv := limited(SimpleRateLimit(1, 50*time.Millisecond))
	defer srv.Close()

	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 429, hit(t, srv.URL))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 200, hit(t, srv.URL))
}

func TestRateLimitFallsBackToMemory(t *testing.T) {
	InitRedisRateLimiter(nil)
	srv := limited(RateLimit(1, time.Minute))
	defer srv.Close()

	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 429, hit(t, srv.URL))
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	defer rdb.Close()

	InitRedisRateLimiter(rdb)
	defer InitRedisRateLimiter(nil)
	require.NotNil(t, redisClient)

	// unique window so reruns do not share a key
	w := time.Duration(2+time.Now().UnixNano()%1000) * time.Second
	srv := limited(RateLimit(2, w))
	defer srv.Close()

	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 200, hit(t, srv.URL))
	assert.Equal(t, 429, hit(t, srv.URL))
}

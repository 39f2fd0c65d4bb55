package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdempotentRouter(t *testing.T, status int) (*gin.Engine, *miniredis.Miniredis, *int32) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls int32
	r := gin.New()
	r.POST("/v1/payments", IdempotencyMiddleware(client, zap.NewNop()), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r, mr, &calls
}

func post(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_SameKeyReplaysResponse(t *testing.T) {
	r, _, calls := newIdempotentRouter(t, http.StatusCreated)

	first := post(r, "key-1")
	second := post(r, "key-1")

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(replayHeader))
}

func TestIdempotency_NoKeyAlwaysExecutes(t *testing.T) {
	r, _, calls := newIdempotentRouter(t, http.StatusCreated)

	post(r, "")
	post(r, "")

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_ServerErrorsNotCached(t *testing.T) {
	r, _, calls := newIdempotentRouter(t, http.StatusServiceUnavailable)

	post(r, "key-503")
	post(r, "key-503")

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_RedisDownFallsThrough(t *testing.T) {
	r, mr, calls := newIdempotentRouter(t, http.StatusCreated)
	mr.Close()

	w := post(r, "key-down")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_ConflictNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// First attempt collides with an in-flight create, the retry succeeds.
	var calls int32
	r := gin.New()
	r.POST("/v1/payments", IdempotencyMiddleware(client, zap.NewNop()), func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			c.JSON(http.StatusConflict, gin.H{"message": "payment is currently being processed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "PROCESSING"})
	})

	first := post(r, "key-409")
	second := post(r, "key-409")
	third := post(r, "key-409")

	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get(replayHeader))
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get(replayHeader))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestReplayable(t *testing.T) {
	t.Parallel()

	assert.True(t, replayable(http.StatusCreated))
	assert.True(t, replayable(http.StatusBadRequest))
	assert.False(t, replayable(http.StatusConflict))
	assert.False(t, replayable(http.StatusServiceUnavailable))
}

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"money-transfer-service/config"
	"money-transfer-service/internal/adapter/http/middleware"
	redisStore "money-transfer-service/internal/adapter/storage/redis"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRateLimitRouter(store ports.RateLimitStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.GET("/test", middleware.RateLimiter(store, "test", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func newRedisStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisStore.NewRateLimitStore(client)
}

func doGet(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t))

	for i := 0; i < 3; i++ {
		w := doGet(router, "10.0.0.1:1234")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "10.0.0.1:1234").Code)
	}

	w := doGet(router, "10.0.0.1:1234")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_KeyedByClientIP(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "10.0.0.1:1234").Code)
	}
	assert.Equal(t, 429, doGet(router, "10.0.0.1:1234").Code)
	assert.Equal(t, 200, doGet(router, "10.0.0.2:1234").Code, "another client has its own budget")
}

func TestRateLimiter_StoreErrorFailsOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().Allow(gomock.Any(), "10.0.0.1:test", int64(3), time.Minute).
		Return(nil, errors.New("redis down"))

	w := doGet(setupRateLimitRouter(store), "10.0.0.1:1234")

	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitRules(t *testing.T) {
	rules := middleware.RateLimitRules(config.RateLimitConfig{
		Window:      30 * time.Second,
		Transfers:   10,
		Withdrawals: 5,
		Accounts:    0,
		Reads:       100,
	})

	assert.Equal(t, middleware.RateLimitRule{Limit: 10, Window: 30 * time.Second}, rules[middleware.GroupTransfers])
	assert.Equal(t, int64(5), rules[middleware.GroupWithdrawals].Limit)
	assert.Equal(t, int64(100), rules[middleware.GroupReads].Limit)
	_, ok := rules[middleware.GroupAccounts]
	assert.False(t, ok, "zero limit disables the group")
}

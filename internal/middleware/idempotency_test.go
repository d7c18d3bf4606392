package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/cache"
)

func newIdempotencyRouter(c cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/api/v1/sales", Idempotency(c, time.Minute, zap.NewNop()), func(gc *gin.Context) {
		gc.Status(http.StatusOK)
	})
	return engine
}

func TestIdempotency(t *testing.T) {
	post := func(engine *gin.Engine, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("duplicate key rejected", func(t *testing.T) {
		engine := newIdempotencyRouter(cache.NewMemoryCache())
		if code := post(engine, "order-123"); code != http.StatusOK {
			t.Fatalf("first request status = %d, want 200", code)
		}
		if code := post(engine, "order-123"); code != http.StatusConflict {
			t.Errorf("duplicate request status = %d, want 409", code)
		}
	})

	t.Run("distinct keys pass", func(t *testing.T) {
		engine := newIdempotencyRouter(cache.NewMemoryCache())
		if code := post(engine, "order-1"); code != http.StatusOK {
			t.Errorf("status = %d, want 200", code)
		}
		if code := post(engine, "order-2"); code != http.StatusOK {
			t.Errorf("status = %d, want 200", code)
		}
	})

	t.Run("requests without key never deduped", func(t *testing.T) {
		engine := newIdempotencyRouter(cache.NewMemoryCache())
		for i := 0; i < 3; i++ {
			if code := post(engine, ""); code != http.StatusOK {
				t.Errorf("status = %d, want 200", code)
			}
		}
	})

	t.Run("cache failure degrades open", func(t *testing.T) {
		failing := newIdempotencyRouter(failingCache{})
		if code := post(failing, "order-123"); code != http.StatusOK {
			t.Errorf("status = %d, want 200 when cache unavailable", code)
		}
		if code := post(failing, "order-123"); code != http.StatusOK {
			t.Errorf("status = %d, want 200 when cache unavailable", code)
		}
	})
}

type failingCache struct {
	cache.Cache
}

func (failingCache) SetNX(_ context.Context, _ string, _ interface{}, _ time.Duration) (bool, error) {
	return false, errTestCacheDown
}

var errTestCacheDown = errors.New("cache down")

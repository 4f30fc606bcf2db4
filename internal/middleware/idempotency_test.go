package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-fieldtrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency_ReplaysCachedResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	mock.ExpectGet("idemp:/visits:emp-1:key-1").SetVal(`{"id":"cached-visit"}`)

	r := gin.New()
	r.POST("/visits", func(c *gin.Context) {
		c.Set("employee_id", "emp-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		t.Fatal("cached key must not reach the handler")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/visits", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cached-visit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	mock.ExpectGet("idemp:/visits:emp-1:key-1").RedisNil()
	mock.ExpectSetNX("idemp:/visits:emp-1:key-1:lock", "locked", 30*time.Second).SetVal(false)

	r := gin.New()
	r.POST("/visits", func(c *gin.Context) {
		c.Set("employee_id", "emp-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		t.Fatal("duplicate in flight must not reach the handler")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/visits", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, _ := redismock.NewClientMock()

	handled := false
	r := gin.New()
	r.POST("/visits", middleware.Idempotency(rdb), func(c *gin.Context) {
		handled = true
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/visits", nil))

	assert.True(t, handled)
	assert.Equal(t, http.StatusCreated, w.Code)
}

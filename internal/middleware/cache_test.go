package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-ok-zid/movie-booking/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		TTL:          30 * time.Second,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func newCacheContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/movies")
	return c, rec
}

func TestRedisCache_Hit(t *testing.T) {
	e := echo.New()
	rdb, mock := redismock.NewClientMock()
	c, rec := newCacheContext(e)

	payload, err := json.Marshal(cachedResponse{
		Status:      http.StatusOK,
		ContentType: echo.MIMEApplicationJSON,
		Body:        []byte(`[{"movie":"MovieA"}]`),
	})
	require.NoError(t, err)
	mock.ExpectGet(cacheKeyFrom("cache", c)).SetVal(string(payload))

	called := false
	mw := NewRedisCache(cacheTestConfig(), rdb)
	err = mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.False(t, called, "handler must be skipped on a hit")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[{"movie":"MovieA"}]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_MissStoresResponse(t *testing.T) {
	e := echo.New()
	rdb, mock := redismock.NewClientMock()
	c, rec := newCacheContext(e)

	key := cacheKeyFrom("cache", c)
	mock.ExpectGet(key).RedisNil()

	stored, err := json.Marshal(cachedResponse{
		Status:      http.StatusOK,
		ContentType: "text/plain; charset=UTF-8",
		Body:        []byte("hello"),
	})
	require.NoError(t, err)
	mock.ExpectSetEx(key, stored, 30*time.Second).SetVal("OK")

	mw := NewRedisCache(cacheTestConfig(), rdb)
	err = mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "hello")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "hello", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SkipsNonGet(t *testing.T) {
	e := echo.New()
	rdb, mock := redismock.NewClientMock()

	req := httptest.NewRequest(http.MethodPost, "/v1/movies/book", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/movies/book")

	called := false
	mw := NewRedisCache(cacheTestConfig(), rdb)
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusCreated)
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

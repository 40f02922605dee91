package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/kberrors"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf), nil))
	r.GET("/admin/kb/queue/:id", func(c *gin.Context) {
		c.String(http.StatusTeapot, RequestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/kb/queue/5", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
		assert.Contains(t, buf.String(), `"route":"/admin/kb/queue/:id"`)
		assert.Contains(t, buf.String(), `"status":418`)
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("keeps an incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/kb/queue/5", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Recovery(zerolog.New(&buf)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "core:internal_error")
	assert.Contains(t, buf.String(), "kaboom")
}

type loaderFunc func(ctx context.Context, host string) (config.AddonSettings, error)

func (f loaderFunc) Load(ctx context.Context, host string) (config.AddonSettings, error) {
	return f(ctx, host)
}

func TestAddonSettings(t *testing.T) {
	ok := loaderFunc(func(_ context.Context, host string) (config.AddonSettings, error) {
		return config.AddonSettings{RequestHost: host, MinReplies: 4}, nil
	})
	r := gin.New()
	r.GET("/s", AddonSettings(ok), func(c *gin.Context) {
		s := Settings(c)
		c.String(http.StatusOK, s.RequestHost)
	})

	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Host = "billing.example.com:8443"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "billing.example.com:8443", w.Body.String())

	failing := loaderFunc(func(context.Context, string) (config.AddonSettings, error) {
		return config.AddonSettings{}, kberrors.Wrap(kberrors.KindInternal, "settings.Load", "", errors.New("db down"))
	})
	r2 := gin.New()
	r2.GET("/s", AddonSettings(failing), func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

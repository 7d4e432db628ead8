package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	handlers "github.com/lingora/payment-service/internal/adapter/handler/http"
)

func proxyContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/media/proxy?url="+url.QueryEscape(target), nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMediaHandler_Proxy(t *testing.T) {
	logger := zap.NewNop()
	e := echo.New()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	upstreamHost := upstream.Listener.Addr().String()
	httpClient := &http.Client{Timeout: 5 * time.Second}

	t.Run("streams an allowed host", func(t *testing.T) {
		h := handlers.NewMediaHandler(httpClient, []string{upstreamHost}, logger)

		c, rec := proxyContext(e, upstream.URL+"/image.png")
		assert.NoError(t, h.Proxy(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rec.Body.String())
	})

	t.Run("rejects a host not on the allow-list", func(t *testing.T) {
		h := handlers.NewMediaHandler(httpClient, []string{"cdn.example.com"}, logger)

		c, rec := proxyContext(e, upstream.URL+"/image.png")
		assert.NoError(t, h.Proxy(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing url parameter", func(t *testing.T) {
		h := handlers.NewMediaHandler(httpClient, []string{upstreamHost}, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/media/proxy", nil)
		rec := httptest.NewRecorder()
		assert.NoError(t, h.Proxy(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		h := handlers.NewMediaHandler(httpClient, []string{upstreamHost}, logger)

		c, rec := proxyContext(e, "ftp://cdn.example.com/file")
		assert.NoError(t, h.Proxy(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

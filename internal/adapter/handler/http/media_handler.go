package http

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MediaHandler streams remote assets through the service so the web client
// never fetches provider-hosted media cross-origin. Only hosts on the
// configured allow-list are reachable.
type MediaHandler struct {
	httpClient   *http.Client
	allowedHosts map[string]struct{}
	logger       *zap.Logger
}

func NewMediaHandler(httpClient *http.Client, allowedHosts []string, logger *zap.Logger) *MediaHandler {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts[h] = struct{}{}
	}
	return &MediaHandler{
		httpClient:   httpClient,
		allowedHosts: hosts,
		logger:       logger,
	}
}

// Proxy handles GET /api/media/proxy?url=...
func (h *MediaHandler) Proxy(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url query parameter is required"})
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid media url"})
	}
	if _, ok := h.allowedHosts[target.Host]; !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "media host not allowed"})
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid media url"})
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("media proxy fetch failed",
			zap.String("host", target.Host),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to fetch media"})
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(resp.StatusCode, contentType, resp.Body)
}

package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ProxyHandler forwards guarded page-resource requests to the backend. The
// backend stays the system of record; the gateway only gates and relays.
type ProxyHandler struct {
	proxy *httputil.ReverseProxy
}

func NewProxyHandler(backendURL string, log zerolog.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("backend proxy failed")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"backend unavailable"}`))
	}

	return &ProxyHandler{proxy: proxy}, nil
}

// Forward relays the request as-is, bearer header included.
func (h *ProxyHandler) Forward(c echo.Context) error {
	h.proxy.ServeHTTP(c.Response(), c.Request())
	return nil
}

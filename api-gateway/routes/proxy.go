package routes

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/logger"
)

// Services maps service names to their base URLs.
type Services map[string]string

// Proxy forwards gateway requests to the backend services.
type Proxy struct {
	proxies map[string]*httputil.ReverseProxy
	log     zerolog.Logger
}

// NewProxy builds one reverse proxy per service. Every URL must be absolute.
func NewProxy(services Services, log zerolog.Logger) (*Proxy, error) {
	p := &Proxy{
		proxies: make(map[string]*httputil.ReverseProxy, len(services)),
		log:     logger.Component(log, "proxy"),
	}

	for name, serviceURL := range services {
		target, err := url.Parse(serviceURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid URL %q for service %s", serviceURL, name)
		}

		name := name
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			p.log.Error().Err(err).Str("service", name).Str("path", r.URL.Path).Msg("upstream request failed")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Service unavailable"}`))
		}
		p.proxies[name] = proxy
	}
	return p, nil
}

// ProxyToService handles requests and proxies them to the named service.
func (p *Proxy) ProxyToService(serviceName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		proxy, exists := p.proxies[serviceName]
		if !exists {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}

		proxy.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

// internal/observability/observability.go
package observability

import (
	"net/http"
	"time"

	"coffeeshop/internal/config"
	"coffeeshop/internal/httputils"
	"coffeeshop/internal/observability/logging"
	"coffeeshop/internal/observability/metrics"

	"github.com/gorilla/mux"
)

// unmatchedRoute labels requests that did not match any registered route
const unmatchedRoute = "unmatched"

// Provider provides observability capabilities
type Provider struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
}

// NewProvider creates a new observability provider
func NewProvider(cfg *config.Config) (*Provider, error) {
	logger, err := logging.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}, nil
}

// routeMatcher is implemented by routers that can resolve a request's route
// before serving it, such as *mux.Router.
type routeMatcher interface {
	Match(req *http.Request, match *mux.RouteMatch) bool
}

// Middleware attaches a traced logger to the request and records request metrics.
// Wrapped around a router it also covers unmatched requests; installed with
// mux.Router.Use it labels by the current route.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ctx := r.Context()
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logging.NewTraceID()
		}
		ctx = logging.ContextWithTraceID(ctx, traceID)

		logger := p.Logger.WithTracing(traceID, logging.NewSpanID())
		ctx = logging.ContextWithLogger(ctx, logger)

		wrapper := httputils.NewResponseWriter(w)
		wrapper.Header().Set("X-Trace-ID", traceID)

		route := routeLabel(next, r)
		logger.Debug("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"remote_addr", r.RemoteAddr,
		)

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(startTime)
		p.Metrics.RecordRequest(r.Method, route, wrapper.StatusCode, duration)

		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"bytes_written", wrapper.BytesWritten,
		)
	})
}

// routeLabel resolves the route template through next when it is a router
func routeLabel(next http.Handler, r *http.Request) string {
	matcher, ok := next.(routeMatcher)
	if !ok {
		return RouteLabel(r)
	}

	var match mux.RouteMatch
	if !matcher.Match(r, &match) || match.MatchErr != nil || match.Route == nil {
		return unmatchedRoute
	}
	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}

// RouteLabel returns the path template of the matched route
func RouteLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}

// MetricsHandler returns an HTTP handler for exposing metrics
func (p *Provider) MetricsHandler() http.Handler {
	return metrics.Handler()
}

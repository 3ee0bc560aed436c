package api

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/logger"
	"github.com/listenupapp/recipebox-server/internal/metrics"
)

// requestLogger logs one line per request once the response is written.
// Handlers find a logger tagged with the request id in the context.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLog := log.With("request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			reqLog.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// loginRateLimit throttles login attempts per client address.
func (s *Server) loginRateLimit(ctx huma.Context, next func(huma.Context)) {
	ip := clientIP(ctx.RemoteAddr())
	if !s.loginLimiter.Allow(ip) {
		metrics.LoginRateLimited()
		s.logger.Warn("Rate limit exceeded",
			"ip", ip,
			"path", ctx.URL().Path,
		)
		msg := "too many login attempts, try again later"
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, msg, domainerrors.RateLimited(msg))
		return
	}
	next(ctx)
}

// clientIP strips the port from a remote address. chi's RealIP middleware
// has already substituted forwarded addresses.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

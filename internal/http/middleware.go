package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/vladimiradmaev/protein-tracker/internal/auth"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

type contextKey string

const ownerKey contextKey = "owner"

const (
	msgAuthRequired = "Authorization header required"
	msgInvalidToken = "Invalid token"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesSent  int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesSent += n
	return n, err
}

// LoggingMiddleware writes one record per request
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "http_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				log.Info("Request processed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", lrw.statusCode,
					"duration", time.Since(start),
					"client_ip", getClientIP(r),
					"bytes", lrw.bytesSent,
					"user_agent", r.UserAgent())
			}()

			next.ServeHTTP(lrw, r)
		})
	}
}

// AuthMiddleware requires a valid bearer token and stores the owner, with the
// timezone from X-Timezone, in the request context.
func AuthMiddleware(verifier *auth.JWT, defaultLoc *time.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeAppError(w, apperrors.NewUnauthorizedError(msgAuthRequired))
				return
			}

			userID, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeAppError(w, apperrors.NewUnauthorizedError(msgInvalidToken))
				return
			}

			loc, _ := utils.ResolveLocation(r.Header.Get("X-Timezone"), defaultLoc)
			owner := domain.Owner{UserID: userID, Location: loc}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
		})
	}
}

func ownerFrom(ctx context.Context) (domain.Owner, bool) {
	owner, ok := ctx.Value(ownerKey).(domain.Owner)
	return owner, ok
}

// getClientIP prefers the first forwarded hop, then X-Real-IP, then the peer address
func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		var err error
		ip, _, err = net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
	}
	if strings.Contains(ip, ",") {
		parts := strings.Split(ip, ",")
		ip = strings.TrimSpace(parts[0])
	}
	return strings.TrimSpace(ip)
}

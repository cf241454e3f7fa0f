package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"smartparking-backend/internal/config"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/security"
)

type contextKey string

const (
	requestIDKey contextKey = "request-id"
	operatorKey  contextKey = "operator"
	accessLogKey contextKey = "access-log"

	requestIDHeader = "X-Request-ID"
)

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// OperatorFromContext returns the claims of the authenticated caller, if any.
func OperatorFromContext(ctx context.Context) (*security.OperatorClaims, bool) {
	claims, ok := ctx.Value(operatorKey).(*security.OperatorClaims)
	return claims, ok
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// accessLog collects fields set by inner handlers for the request log line.
type accessLog struct {
	operator string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := &accessLog{}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), accessLogKey, entry)))

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"requestID", RequestIDFromContext(r.Context()),
		}
		if entry.operator != "" {
			args = append(args, "operator", entry.operator)
		}
		logger.Info("HTTP request", args...)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic in HTTP handler", "path", r.URL.Path, "panic", rec)
				writeErrorStatus(w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware enforces the security level configured for the matched route.
type authMiddleware struct {
	tokenManager security.TokenManager
}

func (m *authMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		template := r.URL.Path
		if route != nil {
			if t, err := route.GetPathTemplate(); err == nil {
				template = t
			}
		}

		level := config.GetEndpointSecurity(r.Method, template)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r)
		if !ok {
			writeErrorStatus(w, http.StatusUnauthorized, "unauthenticated", "authorization token is not provided")
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeErrorStatus(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		if level == config.SecurityAdmin && !claims.HasRole(config.RoleAdmin) {
			writeErrorStatus(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}

		if entry, ok := r.Context().Value(accessLogKey).(*accessLog); ok {
			entry.operator = claims.Username
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), operatorKey, claims)))
	})
}

func extractBearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

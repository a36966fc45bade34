package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	"github.com/goayasushi/zaiko-be/internal/shared"
	"github.com/goayasushi/zaiko-be/internal/users"
)

const (
	detailMissingToken = "認証情報が含まれていません。"
	detailInvalidToken = "トークンが無効です。"
)

type ctxKey int

const (
	userKey ctxKey = iota
	failureKey
)

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userKey).(users.User)
	return user, ok
}

func failureFromContext(ctx context.Context) error {
	if err, ok := ctx.Value(failureKey).(error); ok {
		return err
	}
	return ErrMissingToken
}

// Middleware resolves bearer tokens into request identities.
type Middleware struct {
	service *Service
	logger  *slog.Logger
}

// NewMiddleware constructs the auth middleware set.
func NewMiddleware(service *Service, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{service: service, logger: logger}
}

// Identify attaches the bearer token owner to the request context.
// Requests without a usable token continue anonymously.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		user, err := m.service.Resolve(ctx, raw)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				m.logger.Error("resolve bearer token", slog.Any("error", err))
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, failureKey, ErrInvalidToken)))
			return
		}
		ctx = context.WithValue(ctx, userKey, user)
		ctx = shared.ContextWithActor(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests with 401.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			if errors.Is(failureFromContext(r.Context()), ErrInvalidToken) {
				httpx.Detail(w, http.StatusUnauthorized, detailInvalidToken)
				return
			}
			httpx.Detail(w, http.StatusUnauthorized, detailMissingToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Refresh sets a freshly issued access token on authenticated responses.
func (m *Middleware) Refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFromContext(r.Context()); ok {
			token, err := m.service.Refresh(user)
			if err != nil {
				m.logger.Warn("refresh access token", slog.Int64("user_id", user.ID), slog.Any("error", err))
			} else {
				w.Header().Set(HeaderAccessToken, token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// principalKey is the context key for the request principal.
const principalKey ctxKey = "principal"

var errAuthRequired = domainerrors.Unauthorized("authentication credentials were not provided")

// principalFrom returns the request principal. Requests without a valid
// token are anonymous.
func principalFrom(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous()
}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// authMiddleware resolves a Bearer token into the request principal.
// Missing or invalid tokens leave the request anonymous; handlers decide
// whether that is acceptable.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := s.services.Users.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Debug("bearer token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

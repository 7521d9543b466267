package middleware

import (
	"context"
	"net/http"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/http/response"
	"github.com/buran83/makechat/internal/observability"
)

type contextKey string

const userContextKey contextKey = "user"

// SessionCookieName is the cookie carrying the session value.
const SessionCookieName = "session"

// TokenHeaderName is the header carrying an API token value.
const TokenHeaderName = "X-Auth-Token"

// CredentialResolver turns opaque credential values into active users.
// Disabled users resolve as not found.
type CredentialResolver interface {
	ResolveSession(ctx context.Context, value string) (*domain.User, error)
	ResolveToken(ctx context.Context, value string) (*domain.User, error)
}

// LoginRequired resolves the caller via the session cookie first, then the
// token header. The first successful resolution wins; otherwise the request
// is answered 401 and the handler never runs.
func LoginRequired(resolver CredentialResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, source := resolveIdentity(r, resolver)
			if user == nil {
				observability.RecordGuardDecision(r.Context(), "login_required", source, "deny")
				unauthorized(w)
				return
			}
			observability.RecordGuardDecision(r.Context(), "login_required", source, "allow")
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// AdminRequired resolves the caller like LoginRequired and additionally
// requires the superuser flag. Unauthenticated callers get 401,
// authenticated non-admins get 403.
func AdminRequired(resolver CredentialResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, source := resolveIdentity(r, resolver)
			if user == nil {
				observability.RecordGuardDecision(r.Context(), "admin_required", source, "deny")
				unauthorized(w)
				return
			}
			if !user.IsSuperuser {
				observability.RecordGuardDecision(r.Context(), "admin_required", source, "forbid")
				response.Error(w, http.StatusForbidden, "Permission Denied", "Admin required.")
				return
			}
			observability.RecordGuardDecision(r.Context(), "admin_required", source, "allow")
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// TokenRequired resolves the caller via the token header only. Cookie
// sessions are not accepted.
func TokenRequired(resolver CredentialResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := r.Header.Get(TokenHeaderName)
			if value == "" {
				observability.RecordGuardDecision(r.Context(), "token_required", "none", "deny")
				unauthorized(w)
				return
			}
			user, err := resolver.ResolveToken(r.Context(), value)
			if err != nil {
				observability.RecordGuardDecision(r.Context(), "token_required", "token", "deny")
				unauthorized(w)
				return
			}
			observability.RecordGuardDecision(r.Context(), "token_required", "token", "allow")
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// UserFromContext returns the user attached by one of the auth guards.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(*domain.User)
	return u, ok
}

func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func resolveIdentity(r *http.Request, resolver CredentialResolver) (*domain.User, string) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if user, err := resolver.ResolveSession(r.Context(), cookie.Value); err == nil {
			return user, "session"
		}
	}
	if value := r.Header.Get(TokenHeaderName); value != "" {
		if user, err := resolver.ResolveToken(r.Context(), value); err == nil {
			return user, "token"
		}
	}
	return nil, "none"
}

func unauthorized(w http.ResponseWriter) {
	response.Error(w, http.StatusUnauthorized, "Auth required", "Please login.")
}

// Package guard holds the HTTP middleware that turns a bearer access token
// into an authenticated request and enforces role checks.
package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/jwtx"
	"github.com/campusid/auth/pkg/slogx"
)

// TokenVerifier checks an access token. service.TokenService satisfies it.
type TokenVerifier interface {
	VerifyAccessToken(token string) (jwtx.Claims, error)
}

// RequireAuthenticated admits requests that carry a valid access token and
// attaches its claims to the request context.
func RequireAuthenticated(v TokenVerifier) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(w, r, v)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits requests whose access token carries exactly role. There
// is no hierarchy between roles.
func RequireRole(v TokenVerifier, role domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(w, r, v)
			if !ok {
				return
			}

			got, err := domain.ParseRole(claims.Role)
			if err != nil || !got.Is(role) {
				slogx.FromContext(r.Context()).Info("role check failed",
					slog.String("account_id", claims.AccountID),
					slog.String("role", claims.Role),
					slog.String("want", role.String()),
				)
				authsdk.ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// authenticate writes the 401 response itself when it returns false.
func authenticate(w http.ResponseWriter, r *http.Request, v TokenVerifier) (jwtx.Claims, bool) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		httpx.SetBearerChallenge(w, authsdk.ErrorCodeInvalidRequest, "missing bearer token")
		authsdk.ErrMissingToken.WriteError(w)
		return jwtx.Claims{}, false
	}

	claims, err := v.VerifyAccessToken(token)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("access token rejected", slog.Any("error", err))
		httpx.SetBearerChallenge(w, authsdk.ErrorCodeInvalidToken, "token verification failed")
		authsdk.ErrInvalidToken.WriteError(w)
		return jwtx.Claims{}, false
	}

	return claims, true
}

type ctxKey struct{}

func withClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKey{}, c)
	ctx = httpx.WithAccountID(ctx, c.AccountID)
	return slogx.WithAttrs(ctx, slog.String("account_id", c.AccountID))
}

// ClaimsFromContext returns the claims attached by RequireAuthenticated or
// RequireRole.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(jwtx.Claims)
	return c, ok
}

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthService is the slice of the auth service the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*simplesocial.Principal, error)
	Authenticate(ctx context.Context, email, password string) (*simplesocial.Principal, error)
	IssueToken(principal simplesocial.Principal) (string, error)
	ValidateToken(ctx context.Context, token string) (*simplesocial.Principal, error)
}

// RequireAuth resolves the bearer token in the Authorization header to a
// principal and stores it on the request context. Requests without a valid
// token get a 401.
func RequireAuth(auth AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				writeError(w, r, simplesocial.ErrInvalidToken)
				return
			}

			principal, err := auth.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, r, simplesocial.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal stored by RequireAuth.
func PrincipalFromContext(ctx context.Context) (simplesocial.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(simplesocial.Principal)
	return principal, ok
}

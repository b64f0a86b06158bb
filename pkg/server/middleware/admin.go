// Package middleware holds HTTP middleware for the identity server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminAudience is the required audience claim on admin tokens.
const AdminAudience = "identity-admin"

type contextKey string

const adminSubjectKey contextKey = "adminSubject"

// AdminSubject returns the authenticated admin subject placed on the
// request context by AdminAuthenticator, or "" when absent.
func AdminSubject(ctx context.Context) string {
	subject, _ := ctx.Value(adminSubjectKey).(string)
	return subject
}

// AdminAuthenticator validates admin bearer tokens: HS256 JWTs with the
// identity-admin audience, signed with a shared secret held only by the
// operations tooling.
type AdminAuthenticator struct {
	secret []byte
}

func NewAdminAuthenticator(secret []byte) *AdminAuthenticator {
	return &AdminAuthenticator{secret: secret}
}

// Middleware rejects requests without a valid admin token and stashes the
// token's subject on the context for audit attribution.
func (a *AdminAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			// No secret configured means the admin surface is disabled.
			http.Error(w, "Admin endpoints disabled", http.StatusUnauthorized)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) == 0 {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			http.Error(w, "Malformed authorization header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(
			tokenStr,
			func(token *jwt.Token) (interface{}, error) { return a.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(AdminAudience),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			http.Error(w, "Invalid admin token", http.StatusUnauthorized)
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			http.Error(w, "Admin token missing subject", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminSubjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

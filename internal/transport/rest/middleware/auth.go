package middleware

import (
	"context"
	"net/http"
	"strings"

	"intervue/internal/model"
	"intervue/internal/service"
)

type contextKey string

const claimsKey contextKey = "candidateClaims"

// Auth rejects requests without a valid bearer token and stores the
// candidate claims in the request context.
func Auth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			claims, err := auth.ValidateToken(token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the authenticated candidate claims, or nil
func ClaimsFrom(ctx context.Context) *model.CandidateClaims {
	claims, _ := ctx.Value(claimsKey).(*model.CandidateClaims)
	return claims
}

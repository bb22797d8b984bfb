package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/R-Mend/RMend-Backend/internal/auth"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyClaims  contextKey = "claims"
)

// AccessDenylist answers whether an access token was revoked by logout.
type AccessDenylist interface {
	IsAccessDenied(ctx context.Context, jti string) (bool, error)
}

// Auth validates the access JWT, rejects denylisted tokens and injects the
// claims into the context.
func Auth(jwtManager *auth.JWTManager, denylist AccessDenylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "missing token")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "invalid token")
				return
			}

			if denylist != nil {
				denied, err := denylist.IsAccessDenied(r.Context(), claims.ID)
				if err != nil || denied {
					writeError(w, http.StatusUnauthorized, "AUTH", "invalid token")
					return
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetClaims retrieves the parsed access claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return val
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/router"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey struct{}

var callerKey ctxKey

// Auth resolves the caller's identity and capability from a signed token.
// The identity provider issues tokens with a "sub" claim holding the user id
// and a "role" claim holding one of learner/supervisor/admin; the scheduler
// trusts this pre-authorized context and never authenticates by itself.
func Auth(key any) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, key)
	}
}

func authMiddleware(next http.Handler, key any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := r.Header.Get("Authorization")
		if rawToken == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			authError("failed to parse jwt", w, r, err)
			return
		}
		if !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			authError("invalid jwt claims type", w, r, nil)
			return
		}

		sub, ok := claims["sub"].(string)
		if sub == "" || !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		uid, err := uuid.Parse(sub)
		if err != nil {
			authError("invalid subject id", w, r, err)
			return
		}

		role, _ := claims["role"].(string)
		caller := model.Caller{ID: uid, Role: model.Role(role)}
		switch caller.Role {
		case model.RoleLearner, model.RoleSupervisor, model.RoleAdmin:
		default:
			authError("unknown role claim", w, r, nil)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authError(msg string, w http.ResponseWriter, r *http.Request, err error) {
	slog.Error(msg,
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// CallerFromContext returns the identity the Auth middleware attached.
func CallerFromContext(ctx context.Context) model.Caller {
	caller, _ := ctx.Value(callerKey).(model.Caller)
	return caller
}

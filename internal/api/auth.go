package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
)

const actorKey contextKey = "actor"

// Claims are issued by the identity service; sub carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

var knownRoles = map[appointment.Role]bool{
	appointment.RolePatient: true,
	appointment.RoleStaff:   true,
	appointment.RoleDoctor:  true,
	appointment.RoleAdmin:   true,
}

// AuthMiddleware resolves a bearer token into an appointment.Actor. Requests
// without an Authorization header pass through anonymously; a header that
// does not verify is rejected.
func AuthMiddleware(signingKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return signingKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid || len(signingKey) == 0 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			id, err := uuid.Parse(claims.Subject)
			role := appointment.Role(strings.ToLower(claims.Role))
			if err != nil || !knownRoles[role] {
				writeError(w, http.StatusUnauthorized, "unauthorized", "token subject or role is invalid")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, appointment.Actor{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (appointment.Actor, bool) {
	a, ok := ctx.Value(actorKey).(appointment.Actor)
	return a, ok
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !actor.IsStaff() {
			writeError(w, http.StatusForbidden, "forbidden", "staff role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

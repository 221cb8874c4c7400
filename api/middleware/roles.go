package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// RequireRole gates a route group to the listed roles. It runs after
// RequireAuth: a request with no role at all is unauthenticated (401), a
// shopper hitting the admin catalog is forbidden (403).
func RequireRole(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := enums.UserRole(RoleFromContext(ctx))
			switch {
			case role == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			case !slices.Contains(allowed, role):
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "role %q may not access this resource", role))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

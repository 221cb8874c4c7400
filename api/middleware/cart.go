package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// CartIDHeader names the client generated cart slot.
const CartIDHeader = "X-Cart-Id"

// CartID requires a UUID X-Cart-Id header and exposes it on the context.
func CartID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(CartIDHeader))
			id, err := uuid.Parse(raw)
			if raw == "" || err != nil || id == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, CartIDHeader+" header must be a uuid").
					WithDetails(map[string]string{"header": CartIDHeader}))
				return
			}

			ctx := WithCartID(r.Context(), id.String())
			if logg != nil {
				ctx = logg.WithCartID(ctx, id.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalCartID exposes X-Cart-Id when present. A malformed header is still
// rejected.
func OptionalCartID(logg *logger.Logger) func(http.Handler) http.Handler {
	required := CartID(logg)
	return func(next http.Handler) http.Handler {
		withCart := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get(CartIDHeader)) == "" {
				next.ServeHTTP(w, r)
				return
			}
			withCart.ServeHTTP(w, r)
		})
	}
}

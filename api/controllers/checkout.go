package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/api/middleware"
	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// CheckoutService reconciles a cart into orders.
type CheckoutService interface {
	Checkout(ctx context.Context, identity *checkout.Identity, store checkout.CartStore) (*checkout.Outcome, error)
}

// Checkout places one pending order per cart line. The outcome carries the
// client redirect: /auth when anonymous, /account once every order landed.
func Checkout(svc CheckoutService, stores CartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var identity *checkout.Identity
		if id := currentUserID(r); id != uuid.Nil {
			identity = &checkout.Identity{UserID: id}
		}

		// Anonymous checkouts never touch the cart, so the header is only
		// required once there is someone to check out.
		var store checkout.CartStore
		if identity != nil {
			s, ok := cartStore(w, r, stores, logg)
			if !ok {
				return
			}
			store = s
		}

		outcome, err := svc.Checkout(r.Context(), identity, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if outcome.Status == checkout.StatusCompleted {
			status = http.StatusCreated
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"checkout_status": string(outcome.Status),
				"orders":          len(outcome.Orders),
				"cart_id":         middleware.CartIDFromContext(r.Context()),
			}), "checkout finished")
		}
		responses.WriteSuccessStatus(w, status, outcome)
	}
}

package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/internal/orders"
	"github.com/angelmondragon/dronemart-backend/internal/users"
	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/pagination"
)

// UserFinder loads the signed in account.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// OrderLister pages through a user's orders, newest first.
type OrderLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error)
}

// Account returns the profile of the authenticated user.
func Account(finder UserFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := finder.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "account not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account"))
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// AccountOrders lists the authenticated user's orders.
func AccountOrders(lister OrderLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := lister.ListByUser(r.Context(), userID, params)
		if err != nil {
			if pkgerrors.As(err) == nil {
				err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

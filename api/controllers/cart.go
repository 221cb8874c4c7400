package controllers

import (
	"context"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/api/middleware"
	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/api/validators"
	"github.com/angelmondragon/dronemart-backend/internal/cart"
	"github.com/angelmondragon/dronemart-backend/internal/checkout"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// CartStores resolves the store for a client cart id.
type CartStores interface {
	For(cartID string) *cart.Store
}

// ProductLookup supplies the authoritative name, price and modes of a product.
type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Action    string `json:"action" validate:"required,oneof=buy rent"`
}

type cartQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type cartModeRequest struct {
	Action string `json:"action" validate:"required,oneof=buy rent"`
}

// CartGet returns the cart and its exact total.
func CartGet(stores CartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}
		c, err := store.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// CartAddItem adds one unit of a product under the requested mode. Anonymous
// shoppers get a redirect to the auth page and the cart is left alone.
func CartAddItem(stores CartStores, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUserID(r) == uuid.Nil {
			responses.WriteSuccess(w, redirectResponse{Status: string(checkout.StatusRedirect), Redirect: checkout.AuthPath})
			return
		}
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode := enums.TransactionMode(body.Action)

		p, err := offeredProduct(r.Context(), products, body.ProductID, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := store.AddOrIncrement(r.Context(), p.ID.String(), mode, p.Price.Decimal, p.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// CartSetQuantity applies a signed delta to a product's lines.
func CartSetQuantity(stores CartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := store.SetQuantity(r.Context(), productID.String(), body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// CartSetMode switches a product's lines between buy and rent.
func CartSetMode(stores CartStores, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cartModeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode := enums.TransactionMode(body.Action)

		if products != nil {
			if _, err := offeredProduct(r.Context(), products, productID.String(), mode); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		c, err := store.SetMode(r.Context(), productID.String(), mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// CartRemoveItem drops every line of a product.
func CartRemoveItem(stores CartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := store.Remove(r.Context(), productID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// CartClear empties the cart.
func CartClear(stores CartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := cartStore(w, r, stores, logg)
		if !ok {
			return
		}
		c, err := store.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

func cartStore(w http.ResponseWriter, r *http.Request, stores CartStores, logg *logger.Logger) (*cart.Store, bool) {
	if stores == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
		return nil, false
	}
	cartID := middleware.CartIDFromContext(r.Context())
	if cartID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, middleware.CartIDHeader+" header required"))
		return nil, false
	}
	return stores.For(cartID), true
}

func offeredProduct(ctx context.Context, products ProductLookup, rawID string, mode enums.TransactionMode) (*product.ProductDTO, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product lookup unavailable")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").WithDetails(map[string]string{"product_id": "must be a uuid"})
	}
	p, err := products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(p.AvailableFor, mode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not offered for "+mode.String()).
			WithDetails(map[string]string{"action": "not offered for this product"})
	}
	return p, nil
}

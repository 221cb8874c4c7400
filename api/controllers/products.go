package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/api/validators"
	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

const maxSearchLength = 100

// CatalogReader serves storefront product reads with signed media URLs.
type CatalogReader interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Search(ctx context.Context, search, productType string) ([]catalog.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*catalog.Detail, error)
}

// CatalogList returns every product, optionally narrowed by ?search= and ?type=.
func CatalogList(reader CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		q := r.URL.Query()
		search := validators.SanitizeString(q.Get("search"), maxSearchLength)
		productType := validators.SanitizeString(q.Get("type"), maxSearchLength)

		items, err := reader.Search(r.Context(), search, productType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogTypes returns ["All", ...distinct types in catalog order].
func CatalogTypes(reader CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		items, err := reader.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.Types(items))
	}
}

// CatalogProduct returns one product with its recommendations.
func CatalogProduct(reader CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := reader.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

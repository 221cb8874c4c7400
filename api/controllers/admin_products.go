package controllers

import (
	"bytes"
	"net/http"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/api/validators"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxSeedBytes    = 1 << 20
)

type createProductRequest struct {
	Name         string      `json:"name" validate:"required,max=120"`
	Description  string      `json:"description" validate:"max=2000"`
	Type         string      `json:"type" validate:"required,max=60"`
	Price        types.Money `json:"price" validate:"price"`
	AvailableFor []string    `json:"available_for" validate:"required,min=1,dive,oneof=buy rent"`
	ImageURL     *string     `json:"image_url"`
}

type updateProductRequest struct {
	Name         *string      `json:"name" validate:"omitempty,max=120"`
	Description  *string      `json:"description" validate:"omitempty,max=2000"`
	Type         *string      `json:"type" validate:"omitempty,max=60"`
	Price        *types.Money `json:"price" validate:"omitempty,price"`
	AvailableFor *[]string    `json:"available_for" validate:"omitempty,min=1,dive,oneof=buy rent"`
	ImageURL     *string      `json:"image_url"`
}

// AdminProductsList pages through products by name.
func AdminProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			Name:         body.Name,
			Description:  body.Description,
			Type:         body.Type,
			Price:        body.Price.Decimal,
			AvailableFor: body.AvailableFor,
			ImageObject:  body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminProductUpdate applies a partial update; absent fields are untouched.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			Name:         body.Name,
			Description:  body.Description,
			Type:         body.Type,
			AvailableFor: body.AvailableFor,
			ImageObject:  body.ImageURL,
		}
		if body.Price != nil {
			price := body.Price.Decimal
			input.Price = &price
		}

		dto, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminProductsExport streams the whole catalog as an xlsx workbook.
func AdminProductsExport(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.AllProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := product.WriteXLSX(&buf, items); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render export"))
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// AdminProductsSeed imports a YAML catalog body, skipping names that exist.
func AdminProductsSeed(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inputs, err := product.ParseSeed(http.MaxBytesReader(w, r.Body, maxSeedBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seed file").
				WithDetails(map[string]any{"error": err.Error()}))
			return
		}
		result, err := svc.Seed(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

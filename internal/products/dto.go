package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

// ProductDTO is the admin view of a listing. ImageObject is the object name in
// the media bucket, not a signed URL.
type ProductDTO struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Type         string                  `json:"type"`
	Price        types.Money             `json:"price"`
	AvailableFor []enums.TransactionMode `json:"available_for"`
	ImageObject  *string                 `json:"image_url"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ProductListResult is one admin page.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name         string
	Description  string
	Type         string
	Price        decimal.Decimal
	AvailableFor []string
	ImageObject  *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Type         *string
	Price        *decimal.Decimal
	AvailableFor *[]string
	ImageObject  *string
}

func FromModel(p models.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Price:        types.NewMoney(p.Price),
		AvailableFor: catalog.NormalizeAvailableFor(p.AvailableFor),
		ImageObject:  p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func modesToArray(modes []enums.TransactionMode) pq.StringArray {
	out := make(pq.StringArray, 0, len(modes))
	for _, m := range modes {
		out = append(out, m.String())
	}
	return out
}

// imageObject trims the reference and maps blank values to nil.
func imageObject(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(*value), "/")
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

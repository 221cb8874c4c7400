package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

// AllTypes is the filter sentinel that matches every product type.
const AllTypes = "All"

// Product is the storefront view of a listing. ImageURL is a freshly signed
// read URL, or empty when the listing carries no media.
type Product struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Type         string                  `json:"type"`
	Price        types.Money             `json:"price"`
	AvailableFor []enums.TransactionMode `json:"availableFor"`
	ImageURL     string                  `json:"imageUrl"`
}

// Row is a catalog entry before media signing. Snapshots are cached in this
// shape so that no signed URL ever outlives its request.
type Row struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Type         string                  `json:"type"`
	Price        decimal.Decimal         `json:"price"`
	AvailableFor []enums.TransactionMode `json:"available_for"`
	Image        string                  `json:"image,omitempty"`
}

// Detail is a single product plus a few related listings.
type Detail struct {
	Product         Product   `json:"product"`
	Recommendations []Product `json:"recommendations"`
}

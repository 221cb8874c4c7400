package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a drone listing. ImageURL holds the object name inside the media
// bucket, not a URL; readers sign it per request.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Type         string          `gorm:"column:type;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	AvailableFor pq.StringArray  `gorm:"column:available_for;type:text[];not null;default:'{}'"`
	ImageURL     *string         `gorm:"column:image_url"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

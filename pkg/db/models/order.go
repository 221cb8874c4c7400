package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dronemart-backend/pkg/enums"
)

// Order is created per cart line at checkout.
type Order struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	ProductID uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	Action    enums.TransactionMode `gorm:"column:action;type:text;not null"`
	Status    enums.OrderStatus     `gorm:"column:status;type:text;not null;default:pending"`
	Quantity  int                   `gorm:"column:quantity;not null;default:1"`
	UnitPrice decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Product   *Product              `gorm:"foreignKey:ProductID;references:ID"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

// OrderDTO is the account view of one order.
type OrderDTO struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Action      enums.TransactionMode `json:"action"`
	Status      enums.OrderStatus     `json:"status"`
	Quantity    int                   `json:"quantity"`
	UnitPrice   types.Money           `json:"unit_price"`
	Total       types.Money           `json:"total"`
	CreatedAt   time.Time             `json:"created_at"`
}

// OrderList is one page of a user's orders, newest first.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:        o.ID,
		ProductID: o.ProductID,
		Action:    o.Action,
		Status:    o.Status,
		Quantity:  o.Quantity,
		UnitPrice: types.NewMoney(o.UnitPrice),
		CreatedAt: o.CreatedAt,
	}
	dto.Total = types.NewMoney(o.UnitPrice.Mul(decimalFromInt(o.Quantity)))
	if o.Product != nil {
		dto.ProductName = o.Product.Name
	}
	return dto
}

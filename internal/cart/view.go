package cart

import (
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

// LineView is the API shape of a cart line.
type LineView struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Price    types.Money           `json:"price"`
	Quantity int                   `json:"quantity"`
	Action   enums.TransactionMode `json:"action"`
	Subtotal types.Money           `json:"subtotal"`
}

// View is the API shape of a cart. Total is the exact two-decimal string.
type View struct {
	Items     []LineView `json:"items"`
	Total     string     `json:"total"`
	ItemCount int        `json:"item_count"`
}

func (c Cart) View() View {
	items := make([]LineView, 0, len(c))
	for _, l := range c {
		items = append(items, LineView{
			ID:       l.ID,
			Name:     l.Name,
			Price:    types.NewMoney(l.Price),
			Quantity: l.Quantity,
			Action:   l.Action,
			Subtotal: types.NewMoney(l.Subtotal()),
		})
	}
	return View{Items: items, Total: c.TotalString(), ItemCount: c.ItemCount()}
}

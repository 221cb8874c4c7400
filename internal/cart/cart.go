package cart

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dronemart-backend/pkg/enums"
)

// Line is one product under one transaction mode.
type Line struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
	Action   enums.TransactionMode
}

// Cart is an ordered list of lines, unique by (ID, Action).
type Cart []Line

// MaxQuantity caps a single line. Larger stored values and sums saturate here.
const MaxQuantity = 9999

// addQuantity returns q+delta saturated at MaxQuantity. q must already be in
// [1, MaxQuantity], so only the upper bound can overflow.
func addQuantity(q, delta int) int {
	if delta > MaxQuantity-q {
		return MaxQuantity
	}
	return q + delta
}

// wireLine is the slot format: [{id, name, price, quantity, action}].
type wireLine struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Action   string      `json:"action"`
}

type looseLine struct {
	ID       json.RawMessage `json:"id"`
	Name     json.RawMessage `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
	Action   json.RawMessage `json:"action"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums every line exactly.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalString renders Total with two decimals, e.g. "399.98".
func (c Cart) TotalString() string {
	return c.Total().StringFixed(2)
}

// ItemCount sums quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

func (c Cart) index(id string, action enums.TransactionMode) int {
	for i, l := range c {
		if l.ID == id && l.Action == action {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Encode writes the cart in slot format. An empty cart encodes as [].
func Encode(c Cart) ([]byte, error) {
	out := make([]wireLine, 0, len(c))
	for _, l := range c {
		out = append(out, wireLine{
			ID:       l.ID,
			Name:     l.Name,
			Price:    json.Number(l.Price.String()),
			Quantity: l.Quantity,
			Action:   l.Action.String(),
		})
	}
	return json.Marshal(out)
}

// Decode parses slot content and never fails: content that is not a JSON
// array yields an empty cart and malformed entries are discarded. A line is
// kept only with a non-empty id and a positive numeric price. A missing or
// unknown action becomes buy, a missing or sub-1 quantity becomes 1 and a
// quantity above MaxQuantity is clamped. Repeated (id, action) pairs are merged
// into the first occurrence.
func Decode(raw []byte) Cart {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Cart{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Cart{}
	}

	out := Cart{}
	for _, entry := range entries {
		line, ok := decodeLine(entry)
		if !ok {
			continue
		}
		if i := out.index(line.ID, line.Action); i >= 0 {
			out[i].Quantity = addQuantity(out[i].Quantity, line.Quantity)
			continue
		}
		out = append(out, line)
	}
	return out
}

func decodeLine(entry json.RawMessage) (Line, bool) {
	var loose looseLine
	if err := json.Unmarshal(entry, &loose); err != nil {
		return Line{}, false
	}

	id := strings.TrimSpace(stringValue(loose.ID))
	if id == "" {
		return Line{}, false
	}
	price, ok := positiveDecimal(loose.Price)
	if !ok {
		return Line{}, false
	}

	quantity := 1
	if q, ok := numberValue(loose.Quantity); ok && q.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		quantity = MaxQuantity
		if q.LessThan(decimal.NewFromInt(MaxQuantity)) {
			quantity = int(q.IntPart())
		}
	}

	action := enums.TransactionModeBuy
	if mode, err := enums.ParseTransactionMode(stringValue(loose.Action)); err == nil {
		action = mode
	}

	return Line{
		ID:       id,
		Name:     stringValue(loose.Name),
		Price:    price,
		Quantity: quantity,
		Action:   action,
	}, true
}

// stringValue accepts a JSON string or number and returns it as text.
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// numberValue accepts a JSON number or a numeric string.
func numberValue(raw json.RawMessage) (decimal.Decimal, bool) {
	text := strings.TrimSpace(stringValue(raw))
	if text == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func positiveDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	d, ok := numberValue(raw)
	if !ok || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

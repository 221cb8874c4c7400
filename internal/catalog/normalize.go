package catalog

import (
	"strings"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
)

// NormalizeAvailableFor turns stored availability values into a clean set of
// transaction modes. Entries may arrive comma-joined ("buy,rent"), padded or in
// mixed case; unknown values and duplicates are dropped and the result keeps
// buy before rent.
func NormalizeAvailableFor(values []string) []enums.TransactionMode {
	seen := make(map[enums.TransactionMode]bool, 2)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			mode, err := enums.ParseTransactionMode(part)
			if err != nil {
				continue
			}
			seen[mode] = true
		}
	}

	out := make([]enums.TransactionMode, 0, len(seen))
	for _, mode := range enums.TransactionModes() {
		if seen[mode] {
			out = append(out, mode)
		}
	}
	return out
}

// Offers reports whether the product can be taken under mode.
func (r Row) Offers(mode enums.TransactionMode) bool {
	for _, m := range r.AvailableFor {
		if m == mode {
			return true
		}
	}
	return false
}

// RowFromModel maps a product record into a catalog row.
func RowFromModel(p models.Product) Row {
	row := Row{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Price:        p.Price,
		AvailableFor: NormalizeAvailableFor(p.AvailableFor),
	}
	if p.ImageURL != nil {
		row.Image = strings.TrimSpace(*p.ImageURL)
	}
	return row
}

package catalog

import "github.com/google/uuid"

// Recommend picks up to limit products related to id: same type, or sharing
// at least one availability mode. Catalog order is kept.
func Recommend(products []Product, id uuid.UUID, limit int) []Product {
	var target *Product
	for i := range products {
		if products[i].ID == id {
			target = &products[i]
			break
		}
	}
	out := []Product{}
	if target == nil || limit <= 0 {
		return out
	}

	for _, p := range products {
		if p.ID == id {
			continue
		}
		if p.Type == target.Type || sharesMode(p, *target) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func sharesMode(a, b Product) bool {
	for _, x := range a.AvailableFor {
		for _, y := range b.AvailableFor {
			if x == y {
				return true
			}
		}
	}
	return false
}

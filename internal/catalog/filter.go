package catalog

import "strings"

// Filter returns the products whose name contains search (case-insensitive)
// and whose type equals productType. The AllTypes sentinel, or an empty type,
// matches every type. Input order is preserved and the input is not modified.
func Filter(products []Product, search, productType string) []Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	productType = strings.TrimSpace(productType)
	anyType := productType == "" || productType == AllTypes

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if !anyType && p.Type != productType {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Types lists AllTypes followed by each distinct product type in catalog order.
func Types(products []Product) []string {
	out := []string{AllTypes}
	seen := map[string]bool{}
	for _, p := range products {
		if p.Type == "" || seen[p.Type] {
			continue
		}
		seen[p.Type] = true
		out = append(out, p.Type)
	}
	return out
}

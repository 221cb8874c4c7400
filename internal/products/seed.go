package product

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Type         string   `yaml:"type"`
	Price        string   `yaml:"price"`
	AvailableFor []string `yaml:"available_for"`
	Image        string   `yaml:"image"`
}

// ParseSeed reads a YAML catalog:
//
//	products:
//	  - name: Falcon
//	    type: Quadcopter
//	    price: "199.99"
//	    available_for: [buy, rent]
//	    image: falcon.mp4
func ParseSeed(r io.Reader) ([]CreateProductInput, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	out := make([]CreateProductInput, 0, len(file.Products))
	for i, p := range file.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): invalid price %q", i+1, p.Name, p.Price)
		}
		input := CreateProductInput{
			Name:         p.Name,
			Description:  p.Description,
			Type:         p.Type,
			Price:        price,
			AvailableFor: p.AvailableFor,
		}
		if image := strings.TrimSpace(p.Image); image != "" {
			input.ImageObject = &image
		}
		out = append(out, input)
	}
	return out, nil
}

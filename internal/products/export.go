package product

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
)

const exportSheetName = "Products"

var exportHeader = []string{"ID", "Name", "Type", "Price", "Available For", "Image", "Description", "Updated At"}

// WriteXLSX renders products as a single-sheet spreadsheet.
func WriteXLSX(w io.Writer, products []ProductDTO) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range exportHeader {
		header.AddCell().SetValue(title)
	}

	for _, p := range products {
		modes := make([]string, 0, len(p.AvailableFor))
		for _, m := range p.AvailableFor {
			modes = append(modes, m.String())
		}
		image := ""
		if p.ImageObject != nil {
			image = *p.ImageObject
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Type)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(strings.Join(modes, ","))
		row.AddCell().SetValue(image)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

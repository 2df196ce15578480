package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/lombada"
)

const (
	catalogSheet   = "Catalogo"
	referencePages = 100
)

var catalogHeaders = []string{
	"Papel",
	"Gramatura",
	"Valor base lombada",
	"Fresado (100 págs, mm)",
	"Costurado (100 págs, mm)",
	"Cartonado (100 págs, mm)",
}

// reference bindings, one per offset tier, in header order
var referenceBindings = []lombada.Binding{
	{Milled: true},
	{Sewn: true},
	{CaseBound: true},
}

// CatalogSpreadsheet renders the catalog as an .xlsx workbook: one row per
// weight with the spine width of a 100-page book for each binding tier.
func CatalogSpreadsheet(c *catalog.Catalog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, header := range catalogHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(catalogSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header %s: %w", cell, err)
		}
	}

	row := 2
	for _, p := range c.Papers() {
		if len(p.Weights) == 0 {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(catalogSheet, cell, p.Name); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			row++
			continue
		}

		for _, w := range p.Weights {
			data := []interface{}{p.Name, w.Label, w.BaseDivisor}
			for _, b := range referenceBindings {
				res, err := lombada.Calculate(c, lombada.Input{
					Paper:   p.Name,
					Weight:  w.Label,
					Pages:   referencePages,
					Binding: b,
				})
				if err != nil {
					data = append(data, "")
					continue
				}
				data = append(data, res.SpineWidthMM)
			}

			for col, value := range data {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(catalogSheet, cell, value); err != nil {
					return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
				}
			}
			row++
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(catalogHeaders), 1)
		_ = f.SetCellStyle(catalogSheet, "A1", lastHeader, style)
	}
	_ = f.SetColWidth(catalogSheet, "A", "B", 24)
	_ = f.SetColWidth(catalogSheet, "C", "F", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportCatalogToExcel writes the workbook into dir and returns its path.
func ExportCatalogToExcel(c *catalog.Catalog, dir string, now time.Time) (string, error) {
	data, err := CatalogSpreadsheet(c)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(dir, CatalogFileName(now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}

func CatalogFileName(now time.Time) string {
	return fmt.Sprintf("catalogo_lombada_%s.xlsx", now.Format("20060102_1504"))
}

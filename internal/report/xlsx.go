package report

import (
	"fmt"
	"io"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/xuri/excelize/v2"
)

const (
	dataSheet      = "Datos"
	variationSheet = "Variación"
)

// XLSX writes a workbook with the full table on "Datos" and the variation
// heatmap on "Variación". Absent values are left as empty cells.
func XLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(variationSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	increase, err := fillStyle(f, "F4C7C3")
	if err != nil {
		return err
	}
	decrease, err := fillStyle(f, "C6E7C6")
	if err != nil {
		return err
	}

	if err := writeDataSheet(f, rep, bold); err != nil {
		return err
	}
	if err := writeVariationSheet(f, rep.Heatmap, bold, increase, decrease); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return nil
}

func fillStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		NumFmt:    2,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// cellValue keeps absent values out of the sheet instead of writing zero.
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func writeDataSheet(f *excelize.File, rep Report, bold int) error {
	scenarios := rep.Scenarios()
	headers := []interface{}{"Categoría", "Indicador"}
	for _, sc := range scenarios {
		headers = append(headers, sc.Label())
	}
	for _, sc := range scenarios {
		if sc != indicators.Baseline2022 {
			headers = append(headers, "Variación "+sc.Label())
		}
	}
	headers = append(headers, "Rango mínimo", "Rango máximo")
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(dataSheet, "A1", last, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(dataSheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(dataSheet, "B", "B", 70); err != nil {
		return err
	}

	row := 2
	for _, section := range rep.Sections {
		for _, sum := range section.Summaries {
			values := []interface{}{section.Category.String(), sum.Indicator}
			for _, sc := range scenarios {
				cmp, _ := sum.Comparison(sc)
				values = append(values, cellValue(cmp.Value))
			}
			for _, sc := range scenarios {
				if sc == indicators.Baseline2022 {
					continue
				}
				cmp, _ := sum.Comparison(sc)
				values = append(values, cellValue(cmp.Variation))
			}
			if sum.Range != nil {
				values = append(values, sum.Range.Low, sum.Range.High)
			}
			if err := setRow(f, dataSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeVariationSheet(f *excelize.File, hm indicators.Heatmap, bold, increase, decrease int) error {
	headers := []interface{}{"Indicador"}
	for _, sc := range hm.Scenarios {
		headers = append(headers, sc.Label())
	}
	if err := setRow(f, variationSheet, 1, headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(variationSheet, "A1", last, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(variationSheet, "A", "A", 70); err != nil {
		return err
	}

	for i, name := range hm.Indicators {
		row := i + 2
		values := []interface{}{name}
		for _, cell := range hm.Cells[i] {
			values = append(values, cellValue(cell))
		}
		if err := setRow(f, variationSheet, row, values); err != nil {
			return err
		}
		for j, cell := range hm.Cells[i] {
			if cell == nil || *cell == 0 {
				continue
			}
			style := decrease
			if *cell > 0 {
				style = increase
			}
			ref, _ := excelize.CoordinatesToCellName(j+2, row)
			if err := f.SetCellStyle(variationSheet, ref, ref, style); err != nil {
				return err
			}
		}
	}
	return nil
}

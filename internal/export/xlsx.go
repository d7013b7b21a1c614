package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/javiermolinar/coursegrid/internal/course"
)

const sheetName = "課表"

// WriteXLSX writes g as a single-sheet workbook: one row per period, one
// column per weekday, each course filled with its color.
func WriteXLSX(w io.Writer, g *Grid, title string) error {
	if g.Empty() {
		return ErrEmptyTimetable
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	lastCol := colName(len(course.Days))
	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", lastCol, 20)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders(),
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	breakStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders(),
	})
	if err != nil {
		return fmt.Errorf("creating break style: %w", err)
	}

	// Title row.
	_ = f.SetCellValue(sheetName, "A1", title)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// Header row.
	_ = f.SetCellValue(sheetName, "A2", "節次")
	for i, d := range course.Days {
		_ = f.SetCellValue(sheetName, cell(colName(i+1), 2), d.Local())
	}
	_ = f.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	styles := make(map[string]int)
	for r, p := range course.Periods {
		row := r + 3
		_ = f.SetCellValue(sheetName, cell("A", row), string(p))
		if p.IsBreak() {
			_ = f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), breakStyle)
		} else {
			_ = f.SetCellStyle(sheetName, cell("A", row), cell("A", row), headerStyle)
		}
		_ = f.SetRowHeight(sheetName, row, 32)

		for c := range course.Days {
			cl := g.Cells[r][c]
			if cl == nil {
				continue
			}
			ref := cell(colName(c+1), row)
			_ = f.SetCellValue(sheetName, ref, cellText(cl))

			hex := cl.Color.Hex()
			style, ok := styles[hex]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{
					Fill:      excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
					Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
					Border:    borders(),
				})
				if err != nil {
					return fmt.Errorf("creating course style: %w", err)
				}
				styles[hex] = style
			}
			_ = f.SetCellStyle(sheetName, ref, ref, style)
		}
	}

	footer := len(course.Periods) + 4
	_ = f.SetCellValue(sheetName, cell("A", footer), fmt.Sprintf("總學分: %s", course.Credits(g.TotalCredits)))
	_ = f.MergeCell(sheetName, cell("A", footer), cell(lastCol, footer))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cellText(c *Cell) string {
	lines := []string{c.Name}
	if c.Teacher != "" {
		lines = append(lines, c.Teacher)
	}
	if c.Classroom != "" {
		lines = append(lines, c.Classroom)
	}
	return strings.Join(lines, "\n")
}

func borders() []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "right", "top", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "#BFBFBF", Style: 1})
	}
	return out
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

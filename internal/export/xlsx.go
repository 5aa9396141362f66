package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadqual/internal/model"
)

// WriteXLSX writes the leads to a single-sheet workbook with a bold
// header row.
func WriteXLSX(w io.Writer, leads []model.ContactState) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	headerStyle := xlsx.NewStyle()
	headerStyle.Font.Bold = true
	headerStyle.ApplyFont = true

	hr := sheet.AddRow()
	for _, col := range Header {
		cell := hr.AddCell()
		cell.Value = col
		cell.SetStyle(headerStyle)
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		for _, val := range Row(lead) {
			row.AddCell().Value = val
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

package export

import (
	"github.com/xuri/excelize/v2"
)

func buildXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), worksheetName); err != nil {
		return nil, err
	}
	rtl := true
	if err := f.SetSheetView(worksheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, err
	}
	header := make([]any, len(TabularHeaders))
	for i, h := range TabularHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(worksheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.School, row.Class, row.Subject,
			row.Students, row.Distribution, row.BooksPerCarton, row.TotalBooks,
			row.Quantity,
		}
		if err := f.SetSheetRow(worksheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

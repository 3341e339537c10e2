package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV serialises the table, totals row last.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(csvRecord(row)); err != nil {
			return err
		}
	}
	if len(t.Totals) > 0 {
		if err := writer.Write(csvRecord(t.Totals)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRecord(row []Cell) []string {
	record := make([]string, len(row))
	for i, cell := range row {
		if cell.Numeric {
			record[i] = formatFloat(cell.Number)
			continue
		}
		record[i] = cell.Text
	}
	return record
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

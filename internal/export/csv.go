// Package export writes response tables as spreadsheet-friendly CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// bom makes spreadsheet applications detect UTF-8
const bom = "\ufeff"

// FilenameLayout is the timestamp format used in download names
const FilenameLayout = "20060102_150405"

// Filename returns the download name for an export taken at now
func Filename(now time.Time) string {
	return fmt.Sprintf("sst_responses_%s.csv", now.Format(FilenameLayout))
}

// WriteCSV writes a BOM, the header and the rows unchanged
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"moneywise/internal/core"
)

// export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var exportHeader = []string{"Date", "Title", "Description", "Type", "Category", "Amount"}

// Export writes the snapshot to w in the named format.
func Export(w io.Writer, txns []core.Transaction, format string) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, txns)
	case FormatJSON:
		return ExportJSON(w, txns)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ExportCSV writes one row per transaction, amounts as plain decimals.
func ExportCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, txn := range txns {
		row := []string{
			txn.Date.String(),
			txn.Title,
			txn.Description,
			string(txn.Type),
			txn.Category,
			txn.Amount.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", txn.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes the snapshot as an indented JSON array.
func ExportJSON(w io.Writer, txns []core.Transaction) error {
	if txns == nil {
		txns = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(txns)
}

// ExportFilename builds the dated attachment name, e.g.
// moneywise-export-2024-06-15.csv.
func ExportFilename(format string, now time.Time) string {
	return fmt.Sprintf("moneywise-export-%s.%s", now.Format("2006-01-02"), format)
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

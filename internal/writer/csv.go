package writer

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// CSVWriter writes records to CSV format.
type CSVWriter struct {
	Order         models.Order
	IncludeHeader bool
}

func (w *CSVWriter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (w *CSVWriter) Extension() string {
	return ".csv"
}

// Write writes records in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, res models.Result) error {
	writer := csv.NewWriter(out)

	// Metadata rows ahead of the column header
	if w.IncludeHeader {
		meta := [][]string{
			{"# Format", string(res.Format)},
			{"# Count", strconv.Itoa(res.Count())},
			{"# Total", FormatPlain(res.TotalAmount)},
		}
		if err := writer.WriteAll(meta); err != nil {
			return errors.Wrap(err, "failed to write CSV metadata")
		}
	}

	header := []string{"Bank", "Account Number", "Username", "Account Holder", "Amount"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	for _, rec := range res.Ordered(w.Order) {
		row := []string{
			rec.Bank,
			rec.AccountNumber,
			rec.Username,
			rec.AccountHolderName,
			FormatPlain(rec.Amount),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush CSV")
}

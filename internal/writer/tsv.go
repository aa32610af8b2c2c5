package writer

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// TSVWriter writes one tab-separated line per record:
// bank, account number, username, holder name, amount.
type TSVWriter struct {
	Order models.Order
}

func (w *TSVWriter) ContentType() string {
	return "text/tab-separated-values; charset=utf-8"
}

func (w *TSVWriter) Extension() string {
	return ".tsv"
}

// Write writes the records. Lines are separated by newlines with no
// trailing newline after the last one.
func (w *TSVWriter) Write(out io.Writer, res models.Result) error {
	bw := bufio.NewWriter(out)
	for i, rec := range res.Ordered(w.Order) {
		if i > 0 {
			bw.WriteByte('\n')
		}
		bw.WriteString(TSVLine(rec))
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write TSV")
	}
	return nil
}

// TSVLine formats a single record.
func TSVLine(rec models.Record) string {
	return strings.Join([]string{
		rec.Bank,
		rec.AccountNumber,
		rec.Username,
		rec.AccountHolderName,
		FormatPlain(rec.Amount),
	}, "\t")
}

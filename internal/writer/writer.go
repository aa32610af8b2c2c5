package writer

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// Writer renders a result to an output stream.
type Writer interface {
	Write(out io.Writer, res models.Result) error
	// ContentType is the MIME type of the rendered output.
	ContentType() string
	// Extension is the file extension including the leading dot.
	Extension() string
}

// New returns the writer for the given export format.
func New(format string, order models.Order, includeHeader bool) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "tsv", "text":
		return &TSVWriter{Order: order}, nil
	case "csv":
		return &CSVWriter{Order: order, IncludeHeader: includeHeader}, nil
	case "xlsx", "excel":
		return &XLSXWriter{}, nil
	default:
		return nil, errors.Errorf("unsupported export format %q. Supported: tsv, csv, xlsx", format)
	}
}

// WriteToFile renders res into the file at path.
func WriteToFile(w Writer, path string, res models.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %q", path)
	}
	defer f.Close()

	if err := w.Write(f, res); err != nil {
		return err
	}
	return f.Close()
}

// FormatPlain renders an amount without grouping: 20000, 20000.5.
func FormatPlain(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

var displayPrinter = message.NewPrinter(language.English)

// FormatDisplay renders an amount rounded to whole units with comma
// thousands separators: 20,000.
func FormatDisplay(amount float64) string {
	rounded := math.Round(amount)
	if math.Abs(rounded) >= math.MaxInt64 || math.IsNaN(rounded) {
		return displayPrinter.Sprintf("%.0f", rounded)
	}
	return displayPrinter.Sprintf("%d", int64(rounded))
}

// Badges returns one "BANK count" label per bank in grouped order.
func Badges(res models.Result) []string {
	groups := res.Grouped()
	badges := make([]string, 0, len(groups))
	for _, g := range groups {
		badges = append(badges, displayPrinter.Sprintf("%s %d", g.Bank, len(g.Records)))
	}
	return badges
}

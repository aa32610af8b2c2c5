package extractor

import (
	"bytes"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ErrUnreadable is returned when no method produced text a transfer report
// could contain.
var ErrUnreadable = errors.New("no readable text could be extracted from PDF")

// columnGap is the horizontal distance, in points, above which two text
// pieces on one row are treated as separate columns.
const columnGap = 15

// ExtractFile reads the PDF at filePath and returns its text, pages joined by
// blank lines.
func ExtractFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", filePath)
	}
	return ExtractBytes(data)
}

// ExtractBytes extracts text from an in-memory PDF document.
func ExtractBytes(data []byte) (string, error) {
	pages, libErr := extractWithLibrary(bytes.NewReader(data), int64(len(data)))
	if libErr == nil && isReadableText(pages) {
		return joinPages(pages), nil
	}

	popplerPages, popplerErr := extractWithPdftotext(data)
	if popplerErr == nil && isReadableText(popplerPages) {
		return joinPages(popplerPages), nil
	}

	if libErr != nil {
		return "", errors.Wrap(libErr, "PDF text extraction failed")
	}
	return "", ErrUnreadable
}

func joinPages(pages []string) string {
	return strings.Join(pages, "\n\n")
}

// markerWords appear in every export the parser understands. Text holding
// none of them is treated as undecoded font garbage.
var markerWords = []string{
	"bank", "deposit", "withdraw", "transfer", "amount", "to :",
	"bca", "bni", "bri", "mandiri", "dana", "ovo", "gopay",
}

// textQuality returns the share of runes that are ASCII letters, digits,
// whitespace or common punctuation.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) ||
				unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func containsMarkerWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range markerWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 20 characters, over 60% readable ASCII
// and at least one marker word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 20 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsMarkerWords(pages)
}

// extractWithPdftotext shells out to poppler's pdftotext for documents the
// library cannot decode.
func extractWithPdftotext(data []byte) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, errors.Wrap(err, "pdftotext not available")
	}

	tmp, err := os.CreateTemp("", "transfer-*.pdf")
	if err != nil {
		return nil, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, errors.Wrap(err, "write temp file")
	}
	tmp.Close()

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return nil, errors.Wrap(err, "pdftotext failed")
	}

	// pdftotext separates pages with form feeds
	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if text := strings.TrimSpace(page); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, errors.New("pdftotext produced no output")
	}
	return pages, nil
}

// extractWithLibrary tries the ledongthuc/pdf extraction paths in turn and
// returns the first readable one.
func extractWithLibrary(ra io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, openErr := pdf.NewReader(ra, size)
	if openErr != nil {
		return nil, errors.Wrap(openErr, "open PDF")
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	pages = extractByContent(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	plainText := extractByReaderPlainText(r)
	if isReadableText([]string{plainText}) {
		return []string{plainText}, nil
	}

	return pages, nil
}

// extractByContent rebuilds rows from positioned text so that column gaps
// become runs of spaces the single-line parser can split on.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if t.S == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y grows upwards
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.SliceStable(items, func(a, b int) bool {
				return items[a].x < items[b].x
			})

			var sb strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > columnGap {
					sb.WriteString("  ")
				}
				sb.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, "  ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

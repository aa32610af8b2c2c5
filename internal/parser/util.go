package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxAmount caps values read from text; anything larger is an ID, not money.
const maxAmount = 1e11

var (
	// ErrEmptyAmount is returned when the input holds no digits or separators.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrInvalidAmount is returned when no number can be read from the input.
	ErrInvalidAmount = errors.New("invalid amount")
)

var (
	amountNoise   = regexp.MustCompile(`[^\d.,]`)
	leadingNumber = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)`)

	// Columns in pasted spreadsheet rows are tabs or runs of two or more spaces.
	columnSeparator = regexp.MustCompile(`\t+| {2,}`)
	lineBreak       = regexp.MustCompile(`\r?\n`)
)

// ParseAmount converts a locale-ambiguous amount such as "20,000",
// "20.000,50" or "Rp 1,250.75" to a float64.
//
// When both ',' and '.' appear, whichever comes last is the decimal point.
// A lone ',' is always a thousands separator. The cleaned string is then read
// up to the first character that cannot continue a number, so "1.234.567"
// yields 1.234.
func ParseAmount(s string) (float64, error) {
	clean := amountNoise.ReplaceAllString(s, "")
	if clean == "" {
		return 0, ErrEmptyAmount
	}

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	num := strings.TrimSuffix(leadingNumber.FindString(clean), ".")
	if num == "" {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q: %v", s, err)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q: out of range", s)
	}
	return f, nil
}

// validAmount parses s and reports whether it is a usable positive amount.
func validAmount(s string) (float64, bool) {
	v, err := ParseAmount(s)
	if err != nil || v <= 0 || v >= maxAmount {
		return 0, false
	}
	return v, true
}

// splitLines returns the non-blank lines of text, untrimmed.
func splitLines(text string) []string {
	var lines []string
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitColumns splits a pasted row on tab runs or runs of 2+ spaces.
func splitColumns(line string) []string {
	var cols []string
	for _, c := range columnSeparator.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func containsLine(lines []string, keyword string) bool {
	for _, l := range lines {
		if strings.Contains(l, keyword) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	return digitsPattern.MatchString(s)
}

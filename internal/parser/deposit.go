package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// DepositStrategy handles three-line deposit blocks:
//
//	1	johndoe
//	Deposit	2026-01-13 20:55:58	20,000	1.5
//	G3	BANK DANA, 081234567890, John D	From : ...
//
// The anchor line carries the amount, the line above the username and the
// line below the bank, account number and holder name.
type DepositStrategy struct {
	tables *Tables
}

const depositKeyword = "Deposit"

var (
	depositBankLine = regexp.MustCompile(
		`(?i)(?:[A-Z0-9]+\s+)?BANK\s+([A-Z]+)[,\s]+(\d+)[,\s]+(.*?)(?:\s+From|\s+To|\t|$)`,
	)
	numericToken = regexp.MustCompile(`[\d,]`)
)

func (s *DepositStrategy) Format() models.Format {
	return models.FormatDeposit
}

func (s *DepositStrategy) Detect(in *Input) bool {
	return containsLine(in.Lines(), depositKeyword)
}

func (s *DepositStrategy) Extract(in *Input) ([]Candidate, error) {
	lines := in.Lines()
	var cands []Candidate

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, depositKeyword) {
			continue
		}

		c := Candidate{
			Amount:   depositAmount(line),
			Username: models.Placeholder,
		}
		if i > 0 {
			c.Username = depositUsername(lines[i-1])
		}
		if i+1 < len(lines) {
			if m := depositBankLine.FindStringSubmatch(strings.TrimSpace(lines[i+1])); m != nil {
				c.Bank = strings.ToUpper(m[1])
				c.AccountNumber = m[2]
				c.HolderName = strings.TrimSpace(m[3])
				if idx := strings.Index(c.HolderName, " - "); idx >= 0 {
					c.HolderName = strings.TrimSpace(c.HolderName[:idx])
				}
			}
		}

		if c.Amount > 0 && c.Bank != "" {
			cands = append(cands, c)
		}
	}

	return cands, nil
}

// depositAmount returns the first numeric token that is not a date or time.
func depositAmount(line string) float64 {
	for _, tok := range strings.Fields(line) {
		if !numericToken.MatchString(tok) || utf8.RuneCountInString(tok) <= 3 {
			continue
		}
		if strings.ContainsAny(tok, ":-") {
			continue
		}
		if v, ok := validAmount(tok); ok {
			return v
		}
	}
	return 0
}

// depositUsername reads "1 johndoe" or "johndoe".
func depositUsername(line string) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return models.Placeholder
	}
	if len(parts) > 1 && isDigits(parts[0]) {
		return parts[1]
	}
	return parts[0]
}

package parser

import (
	"strings"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// WithdrawStrategy handles withdrawal blocks:
//
//	5 janedoe
//	Withdraw 2026-01-15 500,000 10
//	To : MANDIRI,1390029713397,Anis Fadillah
//
// The destination line may sit up to withdrawLookahead lines below the anchor.
type WithdrawStrategy struct {
	tables *Tables
}

const (
	withdrawKeyword   = "Withdraw"
	destinationMarker = "To :"
	withdrawLookahead = 5
)

func (s *WithdrawStrategy) Format() models.Format {
	return models.FormatWithdraw
}

func (s *WithdrawStrategy) Detect(in *Input) bool {
	lines := in.Lines()
	return !containsLine(lines, depositKeyword) && containsLine(lines, withdrawKeyword)
}

func (s *WithdrawStrategy) Extract(in *Input) ([]Candidate, error) {
	lines := in.Lines()
	var cands []Candidate

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, withdrawKeyword) {
			continue
		}

		c := Candidate{
			Amount:   withdrawAmount(line),
			Username: models.Placeholder,
		}
		if i > 0 {
			c.Username = withdrawUsername(lines[i-1])
		}

		for j := 1; j <= withdrawLookahead && i+j < len(lines); j++ {
			next := strings.TrimSpace(lines[i+j])
			if !strings.Contains(next, destinationMarker) {
				continue
			}
			if bank, account, holder, ok := splitDestination(next); ok {
				c.Bank, c.AccountNumber, c.HolderName = bank, account, holder
			}
			break
		}

		if c.Amount > 0 && c.Bank != "" {
			cands = append(cands, c)
		}
	}

	return cands, nil
}

// withdrawAmount returns the first token that is not a date or time and
// parses to a usable amount.
func withdrawAmount(line string) float64 {
	for _, tok := range strings.Fields(line) {
		if strings.ContainsAny(tok, "-:") {
			continue
		}
		if v, ok := validAmount(tok); ok {
			return v
		}
	}
	return 0
}

// withdrawUsername takes the last token of "5 janedoe".
func withdrawUsername(line string) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return models.Placeholder
	}
	return parts[len(parts)-1]
}

// splitDestination parses "To : BANK,ACCOUNT,HOLDER[,MORE]". Commas after the
// second one belong to the holder name.
func splitDestination(line string) (bank, account, holder string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", "", false
	}
	fields := strings.Split(strings.TrimSpace(line[idx+1:]), ",")
	if len(fields) < 3 {
		return "", "", "", false
	}
	bank = strings.ToUpper(strings.TrimSpace(fields[0]))
	account = strings.TrimSpace(fields[1])
	holder = strings.TrimSpace(strings.Join(fields[2:], ","))
	return bank, account, holder, true
}

package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// SingleLineStrategy handles one transfer per line, columns separated by tabs
// or wide spacing:
//
//	username  holder name  account  BANK  amount  [anything else]
//
// Columns are located relative to the bank column, so leading columns may be
// missing.
type SingleLineStrategy struct {
	tables *Tables
}

var (
	nonUpperLetters = regexp.MustCompile(`[^A-Z]`)
	anyLetter       = regexp.MustCompile(`[a-zA-Z]`)
)

func (s *SingleLineStrategy) Format() models.Format {
	return models.FormatSingleLine
}

// Detect always succeeds; this is the last layout in the cascade.
func (s *SingleLineStrategy) Detect(in *Input) bool {
	return true
}

func (s *SingleLineStrategy) Extract(in *Input) ([]Candidate, error) {
	var cands []Candidate
	for _, line := range in.Lines() {
		if c, ok := s.parseLine(line); ok {
			cands = append(cands, c)
		}
	}
	return cands, nil
}

func (s *SingleLineStrategy) parseLine(line string) (Candidate, bool) {
	cols := splitColumns(line)

	anchor := -1
	var bank string
	for i, col := range cols {
		letters := nonUpperLetters.ReplaceAllString(strings.ToUpper(col), "")
		if s.tables.IsBank(letters) {
			anchor, bank = i, letters
			break
		}
	}
	if anchor < 0 {
		return Candidate{}, false
	}

	c := Candidate{Bank: bank}
	if anchor >= 1 {
		c.AccountNumber = cols[anchor-1]
	}
	if anchor >= 2 {
		c.HolderName = cols[anchor-2]
	}
	if anchor >= 3 {
		c.Username = cols[anchor-3]
	}

	for _, col := range cols[anchor+1:] {
		if anyLetter.MatchString(col) {
			continue
		}
		// Long hyphenated values are reference numbers or dates.
		if strings.Contains(col, "-") && len(col) > 8 {
			continue
		}
		v, err := ParseAmount(col)
		if err != nil || v <= 0 || v > maxAmount {
			continue
		}
		c.Amount = v
		break
	}

	return c, c.Amount > 0
}

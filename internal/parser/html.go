package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// HTMLStrategy handles table rows copied from an admin panel, e.g.
//
//	<tr><td>BCA</td><td>1234-5678-90</td><td data-changekey="amount">150,000</td></tr>
//
// Only bank, account number and amount are available in this layout.
type HTMLStrategy struct {
	tables *Tables
}

const amountCellSelector = `[data-changekey="amount"], [data-changekey="withdrawAmount"]`

var (
	accountCellPattern = regexp.MustCompile(`^\d{8,25}$`)
	accountCellNoise   = regexp.MustCompile(`[-\s]`)
)

func (s *HTMLStrategy) Format() models.Format {
	return models.FormatHTML
}

func (s *HTMLStrategy) Detect(in *Input) bool {
	return markupPattern.MatchString(in.Raw)
}

func (s *HTMLStrategy) Extract(in *Input) ([]Candidate, error) {
	// Pasted fragments are bare rows; give the parser the table they came from.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tbody>" + in.Raw + "</tbody></table>"))
	if err != nil {
		return nil, errors.Wrap(err, "parse html fragment")
	}

	var cands []Candidate
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		amountText := strings.TrimSpace(row.Find(amountCellSelector).First().Text())
		if amountText == "" {
			return
		}
		amount, ok := validAmount(amountText)
		if !ok {
			return
		}

		var bank, account string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			txt := strings.TrimSpace(cell.Text())
			if txt == "" {
				return
			}
			if b, ok := s.tables.MatchCell(txt); ok && bank == "" {
				bank = b
			} else if account == "" && isAccountCell(txt) {
				account = txt
			}
		})
		if bank == "" {
			return
		}

		cands = append(cands, Candidate{
			Bank:          bank,
			AccountNumber: account,
			Amount:        amount,
		})
	})

	return cands, nil
}

func isAccountCell(txt string) bool {
	return accountCellPattern.MatchString(accountCellNoise.ReplaceAllString(txt, ""))
}

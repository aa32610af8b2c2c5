package models

import (
	"sort"
	"strings"
)

// Placeholder is stored in text fields that could not be determined.
const Placeholder = "-"

// Record is a single normalized transfer.
type Record struct {
	Bank              string  `json:"bank"`
	AccountNumber     string  `json:"accountNumber"`
	Username          string  `json:"username"`
	AccountHolderName string  `json:"accountHolderName"`
	Amount            float64 `json:"amount"`
}

// Format identifies which input layout produced a result.
type Format string

const (
	FormatNone       Format = "none"
	FormatHTML       Format = "html"
	FormatDeposit    Format = "deposit"
	FormatWithdraw   Format = "withdraw"
	FormatSingleLine Format = "single_line"
)

// Order selects how records are laid out by renderers and exporters.
type Order string

const (
	OrderFlat    Order = "flat"
	OrderGrouped Order = "grouped"
)

// ParseOrder maps a user supplied order name to an Order. Empty means flat.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat", "processed":
		return OrderFlat, true
	case "grouped", "sorted", "bank":
		return OrderGrouped, true
	}
	return "", false
}

// Result holds the records extracted from one input and their total.
type Result struct {
	Format      Format   `json:"format"`
	Records     []Record `json:"records"`
	TotalAmount float64  `json:"totalAmount"`
}

// Count returns the number of records.
func (r Result) Count() int {
	return len(r.Records)
}

// BankGroup is the set of records sharing a bank.
type BankGroup struct {
	Bank    string   `json:"bank"`
	Records []Record `json:"records"`
}

// Total sums the group's amounts.
func (g BankGroup) Total() float64 {
	var total float64
	for _, rec := range g.Records {
		total += rec.Amount
	}
	return total
}

// Grouped returns the records grouped by upper-cased bank, groups sorted by
// bank ascending. Records keep their relative order inside a group.
func (r Result) Grouped() []BankGroup {
	index := make(map[string]int)
	var groups []BankGroup
	for _, rec := range r.Records {
		key := strings.ToUpper(rec.Bank)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, BankGroup{Bank: key})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Bank < groups[b].Bank
	})
	return groups
}

// Ordered returns the records in the requested order.
func (r Result) Ordered(order Order) []Record {
	if order != OrderGrouped {
		return r.Records
	}
	out := make([]Record, 0, len(r.Records))
	for _, g := range r.Grouped() {
		out = append(out, g.Records...)
	}
	return out
}

package parser

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// RoutingPrefix is the fixed code an e-wallet account number must start with.
type RoutingPrefix struct {
	Wallet string
	Prefix string
}

var (
	defaultBanks = []string{
		"BCA", "BRI", "MANDIRI", "BNI", "DANA", "GOPAY", "OVO", "LINKAJA",
		"SEABANK", "DANAMON", "CIMB", "MAYBANK", "JAGO", "USDT", "BSI",
	}

	// Lookup order matters: the first wallet contained in the bank name wins.
	defaultPrefixes = []RoutingPrefix{
		{Wallet: "DANA", Prefix: "3901"},
		{Wallet: "OVO", Prefix: "39358"},
		{Wallet: "GOPAY", Prefix: "70001"},
		{Wallet: "LINKAJA", Prefix: "09110"},
		{Wallet: "SHOPEEPAY", Prefix: "112"},
	}

	bankNamePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// Tables holds the recognized bank set and the e-wallet routing prefixes.
// A Tables value is immutable after construction and safe to share.
type Tables struct {
	banks    []string
	bankSet  map[string]struct{}
	prefixes []RoutingPrefix
}

// DefaultTables returns the built-in bank list and routing prefixes.
func DefaultTables() *Tables {
	t, err := NewTables(defaultBanks, defaultPrefixes)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTables validates and copies the given bank list and prefixes.
func NewTables(banks []string, prefixes []RoutingPrefix) (*Tables, error) {
	if len(banks) == 0 {
		return nil, errors.New("bank list is empty")
	}

	t := &Tables{bankSet: make(map[string]struct{}, len(banks))}
	for _, b := range banks {
		b = strings.ToUpper(strings.TrimSpace(b))
		if !bankNamePattern.MatchString(b) {
			return nil, errors.Errorf("invalid bank name %q", b)
		}
		if _, dup := t.bankSet[b]; dup {
			continue
		}
		t.bankSet[b] = struct{}{}
		t.banks = append(t.banks, b)
	}

	for _, p := range prefixes {
		wallet := strings.ToUpper(strings.TrimSpace(p.Wallet))
		prefix := strings.TrimSpace(p.Prefix)
		if wallet == "" {
			return nil, errors.New("routing prefix has no wallet name")
		}
		if !digitsPattern.MatchString(prefix) {
			return nil, errors.Errorf("routing prefix for %s must be digits, got %q", wallet, prefix)
		}
		t.prefixes = append(t.prefixes, RoutingPrefix{Wallet: wallet, Prefix: prefix})
	}

	return t, nil
}

// Banks returns a copy of the recognized bank list in lookup order.
func (t *Tables) Banks() []string {
	return append([]string(nil), t.banks...)
}

// Prefixes returns a copy of the routing prefixes in lookup order.
func (t *Tables) Prefixes() []RoutingPrefix {
	return append([]RoutingPrefix(nil), t.prefixes...)
}

// IsBank reports whether name is exactly a recognized bank.
func (t *Tables) IsBank(name string) bool {
	_, ok := t.bankSet[name]
	return ok
}

// MatchCell returns the first bank (in list order) that equals the
// upper-cased text or one of its space-delimited tokens, so "PT BNI Persero"
// matches BNI.
func (t *Tables) MatchCell(text string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return "", false
	}
	tokens := strings.Fields(upper)
	for _, b := range t.banks {
		if upper == b {
			return b, true
		}
		for _, tok := range tokens {
			if tok == b {
				return b, true
			}
		}
	}
	return "", false
}

// PrefixFor returns the routing prefix whose wallet name is contained in bank.
func (t *Tables) PrefixFor(bank string) (string, bool) {
	for _, p := range t.prefixes {
		if strings.Contains(bank, p.Wallet) {
			return p.Prefix, true
		}
	}
	return "", false
}

// NormalizeAccount prepends the wallet routing prefix to raw when the bank is
// an e-wallet and the account digits do not already start with it.
func (t *Tables) NormalizeAccount(bank, raw string) string {
	prefix, ok := t.PrefixFor(bank)
	if !ok {
		return raw
	}
	if strings.HasPrefix(nonDigits.ReplaceAllString(raw, ""), prefix) {
		return raw
	}
	return prefix + raw
}

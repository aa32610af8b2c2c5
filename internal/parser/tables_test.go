package parser

import (
	"testing"
)

func TestNormalizeAccount(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		name string
		bank string
		raw  string
		want string
	}{
		{"dana adds prefix", "DANA", "081234567890", "3901081234567890"},
		{"dana already prefixed", "DANA", "3901081234567890", "3901081234567890"},
		{"prefix compared on digits", "DANA", "3901-0812-3456", "3901-0812-3456"},
		{"ovo", "OVO", "0856111", "393580856111"},
		{"gopay", "GOPAY", "0811", "700010811"},
		{"linkaja", "LINKAJA", "0812", "091100812"},
		{"shopeepay", "SHOPEEPAY", "0813", "1120813"},
		{"bank untouched", "BCA", "1234567890", "1234567890"},
		{"wallet name contained in bank", "DANAMON", "123", "3901123"},
		{"case sensitive", "dana", "0812", "0812"},
		{"empty account", "OVO", "", "39358"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.NormalizeAccount(tt.bank, tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeAccount(%q, %q): got %q, want %q", tt.bank, tt.raw, got, tt.want)
			}
		})
	}
}

func TestMatchCell(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"BCA", "BCA", true},
		{" bca ", "BCA", true},
		{"Bank Mandiri", "MANDIRI", true},
		{"DANA wallet", "DANA", true},
		{"BNI Syariah", "BNI", true},
		{"Transfer via BRI", "BRI", true},
		// middle tokens count too
		{"PT BNI Persero", "BNI", true},
		{"BCAX", "", false},
		{"DANAMON", "DANAMON", true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := tables.MatchCell(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("MatchCell(%q): got (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNewTables(t *testing.T) {
	tests := []struct {
		name     string
		banks    []string
		prefixes []RoutingPrefix
		wantErr  bool
	}{
		{"valid", []string{"bca", "Dana"}, []RoutingPrefix{{Wallet: "dana", Prefix: "3901"}}, false},
		{"empty banks", nil, nil, true},
		{"bad bank name", []string{"BANK BCA"}, nil, true},
		{"non digit prefix", []string{"DANA"}, []RoutingPrefix{{Wallet: "DANA", Prefix: "39a"}}, true},
		{"missing wallet", []string{"DANA"}, []RoutingPrefix{{Prefix: "3901"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := NewTables(tt.banks, tt.prefixes)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tables.IsBank("BCA") || !tables.IsBank("DANA") {
				t.Errorf("banks not upper-cased: %v", tables.Banks())
			}
			if got := tables.NormalizeAccount("DANA", "0812"); got != "39010812" {
				t.Errorf("prefix not applied: got %q", got)
			}
		})
	}
}

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()

	if len(tables.Banks()) != 15 {
		t.Errorf("banks: got %d, want 15", len(tables.Banks()))
	}
	if len(tables.Prefixes()) != 5 {
		t.Errorf("prefixes: got %d, want 5", len(tables.Prefixes()))
	}
	if tables.IsBank("SHOPEEPAY") {
		t.Error("SHOPEEPAY should not be a recognized bank by default")
	}

	banks := tables.Banks()
	banks[0] = "MUTATED"
	if tables.Banks()[0] != "BCA" {
		t.Error("Banks() must return a copy")
	}
}

package models

import (
	"testing"
)

func sampleResult() Result {
	return Result{
		Format: FormatSingleLine,
		Records: []Record{
			{Bank: "MANDIRI", AccountNumber: "111", Username: "a", AccountHolderName: "A", Amount: 10},
			{Bank: "BCA", AccountNumber: "222", Username: "b", AccountHolderName: "B", Amount: 20},
			{Bank: "DANA", AccountNumber: "3901333", Username: "c", AccountHolderName: "C", Amount: 30},
			{Bank: "BCA", AccountNumber: "444", Username: "d", AccountHolderName: "D", Amount: 40},
		},
		TotalAmount: 100,
	}
}

func TestResult_Grouped(t *testing.T) {
	groups := sampleResult().Grouped()

	wantBanks := []string{"BCA", "DANA", "MANDIRI"}
	if len(groups) != len(wantBanks) {
		t.Fatalf("groups: got %d, want %d", len(groups), len(wantBanks))
	}
	for i, bank := range wantBanks {
		if groups[i].Bank != bank {
			t.Errorf("groups[%d].Bank: got %q, want %q", i, groups[i].Bank, bank)
		}
	}

	bca := groups[0]
	if len(bca.Records) != 2 {
		t.Fatalf("BCA records: got %d, want 2", len(bca.Records))
	}
	if bca.Records[0].Username != "b" || bca.Records[1].Username != "d" {
		t.Errorf("BCA order not preserved: got %q then %q", bca.Records[0].Username, bca.Records[1].Username)
	}
	if bca.Total() != 60 {
		t.Errorf("BCA total: got %f, want 60", bca.Total())
	}
}

func TestResult_GroupedEmpty(t *testing.T) {
	if groups := (Result{}).Grouped(); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestResult_Ordered(t *testing.T) {
	r := sampleResult()

	flat := r.Ordered(OrderFlat)
	if flat[0].Bank != "MANDIRI" {
		t.Errorf("flat[0]: got %q, want MANDIRI", flat[0].Bank)
	}

	grouped := r.Ordered(OrderGrouped)
	want := []string{"b", "d", "c", "a"}
	for i, u := range want {
		if grouped[i].Username != u {
			t.Errorf("grouped[%d].Username: got %q, want %q", i, grouped[i].Username, u)
		}
	}
	if r.Count() != 4 {
		t.Errorf("count: got %d, want 4", r.Count())
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input string
		want  Order
		ok    bool
	}{
		{"", OrderFlat, true},
		{"flat", OrderFlat, true},
		{"Grouped", OrderGrouped, true},
		{"sorted", OrderGrouped, true},
		{"random", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOrder(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseOrder(%q): got (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

package parser

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  error
	}{
		{"20,000", 20000, nil},
		{"20.000,50", 20000.50, nil},
		{"1,234.56", 1234.56, nil},
		{"1,234,567", 1234567, nil},
		{"Rp 150,000", 150000, nil},
		{" 25.99 ", 25.99, nil},
		{"1.5", 1.5, nil},
		{"50.000", 50, nil},
		{"1.234.567", 1.234, nil},
		{"1.234.567,89", 1234567.89, nil},
		{"-500", 500, nil},
		{"0", 0, nil},
		{"", 0, ErrEmptyAmount},
		{"Deposit", 0, ErrEmptyAmount},
		{",", 0, ErrInvalidAmount},
		{".", 0, ErrInvalidAmount},
		{strings.Repeat("9", 400), 0, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseAmount(%q): got err %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"500,000", 500000, true},
		{"0", 0, false},
		{"abc", 0, false},
		{"100000000000", 0, false},
		{"99999999999", 99999999999, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := validAmount(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("validAmount(%q): got (%f, %v), want (%f, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	lines := splitLines("first\r\n\n   \nsecond\n\tthird\t\n")
	want := []string{"first", "second", "\tthird\t"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"bob\tAnna Lee\t1234567890\tBCA\t150,000", []string{"bob", "Anna Lee", "1234567890", "BCA", "150,000"}},
		{"bob   Anna Lee  123  BRI", []string{"bob", "Anna Lee", "123", "BRI"}},
		{"\t\tBCA\t\t 10 ", []string{"BCA", "10"}},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitColumns(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %q, want %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("column %d: got %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

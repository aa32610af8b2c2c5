package parser

import (
	"testing"
)

func TestSingleLineStrategy_ParseLine(t *testing.T) {
	s := &SingleLineStrategy{tables: DefaultTables()}

	tests := []struct {
		name string
		line string
		want Candidate
		ok   bool
	}{
		{
			name: "all columns",
			line: "bob\tAnna Lee\t1234567890\tBCA\t150,000",
			want: Candidate{Bank: "BCA", AccountNumber: "1234567890", HolderName: "Anna Lee", Username: "bob", Amount: 150000},
			ok:   true,
		},
		{
			name: "space separated columns",
			line: "bob   Anna Lee   1234567890   bri.   75,000   done",
			want: Candidate{Bank: "BRI", AccountNumber: "1234567890", HolderName: "Anna Lee", Username: "bob", Amount: 75000},
			ok:   true,
		},
		{
			name: "leading columns missing",
			line: "1234567890\tMANDIRI\t20,000",
			want: Candidate{Bank: "MANDIRI", AccountNumber: "1234567890", Amount: 20000},
			ok:   true,
		},
		{
			name: "bank first",
			line: "BCA\t10,000",
			want: Candidate{Bank: "BCA", Amount: 10000},
			ok:   true,
		},
		{
			name: "long hyphenated values skipped, short ones read as digits",
			line: "x\ty\t123\tBNI\t2026-01-13\tTRX01\t12-34\t300,000",
			want: Candidate{Bank: "BNI", AccountNumber: "123", HolderName: "y", Username: "x", Amount: 1234},
			ok:   true,
		},
		{
			name: "skips oversized numbers",
			line: "u\th\t1\tJAGO\t999999999999\t5,000",
			want: Candidate{Bank: "JAGO", AccountNumber: "1", HolderName: "h", Username: "u", Amount: 5000},
			ok:   true,
		},
		{
			name: "first bank column is the anchor",
			line: "u\th\t1\tDANA\tBCA\t5,000",
			want: Candidate{Bank: "DANA", AccountNumber: "1", HolderName: "h", Username: "u", Amount: 5000},
			ok:   true,
		},
		{
			name: "no amount",
			line: "u\th\t1\tBCA\tpending",
			ok:   false,
		},
		{
			name: "no bank",
			line: "u\th\t1\tPERMATA\t5,000",
			ok:   false,
		},
		{
			name: "amount before bank is ignored",
			line: "5,000\tBCA",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.parseLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v (%+v)", ok, tt.ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSingleLineStrategy_LinesAreIndependent(t *testing.T) {
	e := New()

	input := "alice\tAlice W\t081299998888\tDANA\t50,000\n" +
		"this line is noise\n" +
		"carol\tCarol K\t0856\tOVO\t\n" +
		"dave\tDave P\t7777777\tBSI\t1,000.50"

	res := e.Process(input)
	if res.Count() != 2 {
		t.Fatalf("records: got %d, want 2: %+v", res.Count(), res.Records)
	}
	if res.Records[0].AccountNumber != "3901081299998888" {
		t.Errorf("records[0].AccountNumber: got %q", res.Records[0].AccountNumber)
	}
	if res.Records[1].Bank != "BSI" || res.Records[1].Amount != 1000.5 {
		t.Errorf("records[1]: got %+v", res.Records[1])
	}
	if res.TotalAmount != 51000.5 {
		t.Errorf("total: got %f, want 51000.5", res.TotalAmount)
	}
}

package extractor

import (
	"testing"
)

func TestExtractFile_Nonexistent(t *testing.T) {
	_, err := ExtractFile("/tmp/nonexistent-transfer-12345.pdf")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtractBytes_NotAPDF(t *testing.T) {
	_, err := ExtractBytes([]byte("Deposit BANK BCA,123,Budi"))
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name     string
		pages    []string
		expected bool
	}{
		{
			name:     "transfer row",
			pages:    []string{"bob  Anna Lee  1234567890  BRI  75,000"},
			expected: true,
		},
		{
			name:     "deposit block across pages",
			pages:    []string{"Deposit 100,000", "BANK BCA,1234,Budi"},
			expected: true,
		},
		{
			name:     "too short",
			pages:    []string{"BCA 10"},
			expected: false,
		},
		{
			name:     "no marker words",
			pages:    []string{"lorem ipsum dolor sit amet consectetur"},
			expected: false,
		},
		{
			name:     "binary garbage",
			pages:    []string{"ÿþýüûúùø÷öõôóòñðïîíìëêéèçæåäãâáàbank"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReadableText(tt.pages); got != tt.expected {
				t.Errorf("isReadableText() = %v, want %v", got, tt.expected)
			}
		})
	}
}

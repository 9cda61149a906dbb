package nepali

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trims whitespace",
			in:   "  मुद्दा  \n",
			want: "मुद्दा",
		},
		{
			name: "strips zero width characters",
			in:   "काठ\u200Bमा\u200Cडौँ\u200D",
			want: "काठमाडौँ",
		},
		{
			name: "strips soft hyphen and BOM",
			in:   "\uFEFFnews\u00ADpaper",
			want: "newspaper",
		},
		{
			name: "straightens curly quotes",
			in:   "“फैसला” ‘order’",
			want: `"फैसला" 'order'`,
		},
		{
			name: "NFC composes decomposed sequences",
			in:   "décision", // e + combining acute
			want: "décision",
		},
		{
			name: "composed Devanagari is stable",
			in:   "नेँ", // ने + candrabindu
			want: "नेँ",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransliterateDigitsFullRange(t *testing.T) {
	got := TransliterateDigits("०१२३४५६७८९")
	if got != "0123456789" {
		t.Fatalf("TransliterateDigits full range = %q, want 0123456789", got)
	}
}

func TestTransliterateDigitsMixedText(t *testing.T) {
	got := TransliterateDigits("मुद्दा नं २०७९०१२३४")
	// २०७९०१२३४ → 207901234: year 2079 followed by serial 01234.
	if !strings.Contains(got, "2079") {
		t.Fatalf("mixed text = %q, expected year 2079", got)
	}
	if !strings.Contains(got, "01234") {
		t.Fatalf("mixed text = %q, expected serial 01234", got)
	}
	if !strings.HasPrefix(got, "मुद्दा नं ") {
		t.Fatalf("Devanagari letters must be unchanged, got %q", got)
	}
}

func TestTransliterateDigitsLeavesASCII(t *testing.T) {
	in := "Case No. 078-CR-0123"
	if got := TransliterateDigits(in); got != in {
		t.Errorf("ASCII input changed: %q", got)
	}
}

func TestTextHash(t *testing.T) {
	a := TextHash("फैसला")
	b := TextHash("फैसला")
	c := TextHash("फैसला ")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if a == c {
		t.Error("different inputs must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

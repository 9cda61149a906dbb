package extraction

import "testing"

func TestSectionFor(t *testing.T) {
	tests := []struct {
		docType string
		want    string
	}{
		{"POA", "poa"},
		{"Petition", "petition"},
		{"Writ Petition", "petition"},
		{"Interim Order", "order"},
		{"Final Order", "order"},
		{"Judgment", "judgment"},
		{"Supreme Court Judgment", "judgment"},
		{"District Court Judgment", "judgment"},
		{"Appeal", "appeal"},
		{"High Court Appeal", "appeal"},
		{"Evidence", "evidence"},
		{"Citizenship Certificate", "other"},
		{"", "other"},
		{"  petition  ", "petition"},
	}
	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			if got := SectionFor(tt.docType); got != tt.want {
				t.Errorf("SectionFor(%q) = %q, want %q", tt.docType, got, tt.want)
			}
		})
	}
}

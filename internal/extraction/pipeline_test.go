package extraction

import (
	"math"
	"testing"

	"github.com/nyayalaya/casefile/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestAverageConfidence(t *testing.T) {
	tests := []struct {
		name   string
		in     ResultInput
		want   float64
		wantOK bool
	}{
		{
			name:   "explicit value wins",
			in:     ResultInput{AvgConfidence: floatPtr(0.91), Pages: []models.PageText{{Confidence: 0.1}}},
			want:   0.91,
			wantOK: true,
		},
		{
			name: "mean over pages",
			in: ResultInput{Pages: []models.PageText{
				{Number: 1, Confidence: 0.8},
				{Number: 2, Confidence: 0.9},
			}},
			want:   0.85,
			wantOK: true,
		},
		{
			name:   "nothing available",
			in:     ResultInput{},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AverageConfidence(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("avg = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsReviewDerivation(t *testing.T) {
	tests := []struct {
		avg  float64
		want bool
	}{
		{0.84, true},
		{0.85, false},
		{0.86, false},
		{0, true},
		{1, false},
	}
	for _, tt := range tests {
		if got := models.DeriveNeedsReview(tt.avg); got != tt.want {
			t.Errorf("DeriveNeedsReview(%v) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}

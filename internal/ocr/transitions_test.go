package ocr

import (
	"strings"
	"testing"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/models"
)

func TestCheckStart(t *testing.T) {
	tests := []struct {
		current models.JobStatus
		wantErr bool
	}{
		{models.JobStatusQueued, false},
		{models.JobStatusRunning, true},
		{models.JobStatusCompleted, true},
		{models.JobStatusFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			err := CheckStart(tt.current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckStart(%s) error = %v, wantErr %v", tt.current, err, tt.wantErr)
			}
			if err != nil {
				if !apperr.IsKind(err, apperr.ErrConflict) {
					t.Errorf("expected conflict kind, got %v", err)
				}
				if !strings.Contains(err.Error(), string(tt.current)) {
					t.Errorf("conflict must report current status, got %q", err)
				}
			}
		})
	}
}

func TestCheckComplete(t *testing.T) {
	for _, s := range []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning, models.JobStatusCompleted} {
		if err := CheckComplete(s); err != nil {
			t.Errorf("CheckComplete(%s) = %v, want nil", s, err)
		}
	}
	if err := CheckComplete(models.JobStatusFailed); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Errorf("CheckComplete(failed) = %v, want conflict", err)
	}
}

func TestCheckFail(t *testing.T) {
	for _, s := range []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning, models.JobStatusCompleted, models.JobStatusFailed} {
		if err := CheckFail(s); err != nil {
			t.Errorf("CheckFail(%s) = %v, want nil", s, err)
		}
	}
}

func TestTerminal(t *testing.T) {
	if models.JobStatusQueued.Terminal() || models.JobStatusRunning.Terminal() {
		t.Error("queued/running must not be terminal")
	}
	if !models.JobStatusCompleted.Terminal() || !models.JobStatusFailed.Terminal() {
		t.Error("completed/failed must be terminal")
	}
}

package ocr

import (
	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/models"
)

// CheckStart validates the queued → running transition. Any other origin
// is a conflict reported with the current status.
func CheckStart(current models.JobStatus) error {
	if current == models.JobStatusQueued {
		return nil
	}
	return apperr.New(apperr.ErrConflict, "cannot start job: status is %s", current)
}

// CheckComplete validates completion. A worker may submit results without
// an explicit start call, so queued → completed is allowed. Completing an
// already-completed job is an idempotent re-submission, also allowed; only
// a failed job cannot be completed (recovery goes through requeue).
func CheckComplete(current models.JobStatus) error {
	if current == models.JobStatusFailed {
		return apperr.New(apperr.ErrConflict, "cannot complete job: status is %s", current)
	}
	return nil
}

// CheckFail always passes: a failure callback may arrive in any state.
// Whether the parent document regresses is decided separately.
func CheckFail(current models.JobStatus) error {
	return nil
}

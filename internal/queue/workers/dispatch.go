package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/auth"
	"github.com/nyayalaya/casefile/internal/ocr"
	"github.com/nyayalaya/casefile/internal/queue"
	"github.com/nyayalaya/casefile/internal/storage"
	"github.com/nyayalaya/casefile/internal/tenant"
)

// OCRDispatchWorker hands a queued document to the external OCR engine.
// The engine processes asynchronously and reports back through the HTTP
// callbacks; this worker only marks the job running and delivers the blob
// location.
type OCRDispatchWorker struct {
	scheduler  *ocr.Service
	store      storage.Storage
	bucket     string
	engineURL  string
	token      string
	httpClient *http.Client
}

func NewOCRDispatchWorker(scheduler *ocr.Service, store storage.Storage, bucket, engineURL, token string) *OCRDispatchWorker {
	return &OCRDispatchWorker{
		scheduler:  scheduler,
		store:      store,
		bucket:     bucket,
		engineURL:  engineURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type engineRequest struct {
	JobID       string `json:"job_id"`
	DocumentID  string `json:"document_id"`
	DocumentURL string `json:"document_url"`
}

func (w *OCRDispatchWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.OCRDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal dispatch payload: %w", err)
	}

	if w.engineURL == "" {
		slog.Info("no OCR engine configured, leaving job queued", "job_id", payload.JobID)
		return nil
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job id: %w", err)
	}

	// The dispatcher acts with the worker credential, not as any tenant.
	ctx = tenant.WithCaller(ctx, tenant.WorkerCaller())

	started, err := w.scheduler.Start(ctx, jobID)
	if err != nil {
		// Already started or superseded by a requeue: nothing to deliver.
		if apperr.IsKind(err, apperr.ErrConflict) {
			slog.Info("skipping dispatch", "job_id", payload.JobID, "reason", err)
			return nil
		}
		return err
	}

	doc, err := w.documentURL(ctx, started.DocumentID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(engineRequest{
		JobID:       payload.JobID,
		DocumentID:  payload.DocumentID,
		DocumentURL: doc,
	})
	if err != nil {
		return fmt.Errorf("marshal engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.engineURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.WorkerTokenHeader, w.token)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver to engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("engine rejected dispatch (%d)", resp.StatusCode)
	}

	slog.Info("dispatched document to OCR engine", "job_id", payload.JobID, "document_id", payload.DocumentID)
	return nil
}

func (w *OCRDispatchWorker) documentURL(ctx context.Context, documentID uuid.UUID) (string, error) {
	key, err := w.scheduler.StorageKey(ctx, documentID)
	if err != nil {
		return "", err
	}
	return w.store.GetPublicURL(w.bucket, key), nil
}

package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"moneywise/internal/amqp"
)

// AuditWorker appends transaction events to a JSON-lines audit trail. Each
// event becomes one line, so the log can be tailed and grepped directly.
type AuditWorker struct {
	mu   sync.Mutex
	path string
}

// auditRecord is the on-disk shape of a single audit line.
type auditRecord struct {
	RecordedAt time.Time `json:"recordedAt"`
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	Amount     int64     `json:"amountCents"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewAuditWorker(path string) (*AuditWorker, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	return &AuditWorker{path: path}, nil
}

// HandleEvent records a single transaction event. Returning an error makes
// the consumer requeue the delivery.
func (w *AuditWorker) HandleEvent(event *amqp.TransactionEvent) error {
	record := auditRecord{
		RecordedAt: time.Now().UTC(),
		ID:         event.ID,
		Action:     event.Action,
		Title:      event.Title,
		Type:       string(event.Type),
		Category:   event.Category,
		Amount:     event.Amount,
		OccurredAt: event.OccurredAt,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if err := w.append(line); err != nil {
		return err
	}

	slog.Info("Audit event recorded",
		"id", event.ID,
		"action", event.Action,
		"amount_cents", event.Amount)

	return nil
}

func (w *AuditWorker) append(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

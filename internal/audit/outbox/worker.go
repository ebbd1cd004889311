// Package outbox drains the audit_outbox table into Kafka. The engine writes
// events and commits; this worker publishes them asynchronously so a broker
// outage never blocks an engine operation.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultPollInterval = 2 * time.Second

// Worker polls unpublished outbox rows and produces them to the audit topic.
type Worker struct {
	db           *sql.DB
	client       *kgo.Client
	topic        string
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewWorker(db *sql.DB, client *kgo.Client, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		db:           db,
		client:       client,
		topic:        topic,
		logger:       logger,
		pollInterval: defaultPollInterval,
		batchSize:    100,
	}
}

// EnsureTopic creates the audit topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				// Rows stay unpublished; the next tick retries them.
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id      string
	action  string
	payload []byte
}

func (w *Worker) drainOnce(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, action, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`, w.batchSize)
	if err != nil {
		return fmt.Errorf("query unpublished rows: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.action, &row.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	for _, row := range pending {
		record := &kgo.Record{
			Topic: w.topic,
			Key:   []byte(row.action),
			Value: row.payload,
		}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce audit event %s: %w", row.id, err)
		}
		if _, err := w.db.ExecContext(ctx, `
			UPDATE audit_outbox SET published_at = NOW() WHERE id = $1`, row.id); err != nil {
			return fmt.Errorf("mark row published %s: %w", row.id, err)
		}
	}

	w.logger.InfoContext(ctx, "audit outbox drained", "published", len(pending))
	return nil
}

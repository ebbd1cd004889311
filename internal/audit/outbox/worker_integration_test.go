//go:build integration

package outbox_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"lifeledger/internal/audit"
	"lifeledger/internal/audit/outbox"
	"lifeledger/pkg/testutil/containers"
)

func TestWorkerDrainsOutbox(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	broker := containers.NewRedpandaContainer(t)

	const topic = "audit.events"
	producer := broker.NewClient(t)
	require.NoError(t, outbox.EnsureTopic(ctx, producer, topic))

	auditor := audit.NewPublisher(audit.NewPostgresStore(pg.DB))
	require.NoError(t, auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionBankDeposit,
		PersonID: 7,
		Amount:   40,
	}))
	require.NoError(t, auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionRented,
		PersonID: 7,
		ObjectID: 3,
	}))

	worker := outbox.NewWorker(pg.DB, producer, topic, slog.New(slog.DiscardHandler))
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- worker.Run(runCtx) }()

	consumer := broker.NewClient(t,
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)

	var records []*kgo.Record
	deadline := time.After(30 * time.Second)
	for len(records) < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 audit records, got %d", len(records))
		default:
		}
		pollCtx, pollCancel := context.WithTimeout(ctx, 2*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		pollCancel()
		records = append(records, fetches.Records()...)
	}

	keys := []string{string(records[0].Key), string(records[1].Key)}
	assert.Contains(t, keys, string(audit.ActionBankDeposit))
	assert.Contains(t, keys, string(audit.ActionRented))

	// Drained rows are marked, not deleted.
	require.Eventually(t, func() bool {
		var unpublished int
		err := pg.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NULL`).Scan(&unpublished)
		return err == nil && unpublished == 0
	}, 10*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

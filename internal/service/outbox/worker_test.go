package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type stubPublisher struct {
	mu        sync.Mutex
	failTimes int
	published []domain.OutboxMessage
}

func (s *stubPublisher) Publish(event domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTimes > 0 {
		s.failTimes--
		return errors.New("broker unavailable")
	}
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.DebugLevel)
	return logger.WithField("component", "test")
}

func enqueue(t *testing.T, repo domain.OutboxRepository) domain.OutboxMessage {
	t.Helper()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "product",
		AggregateID:   "product-1",
		EventType:     "stock.sold",
		Payload:       []byte(`{"product_id":"product-1","quantity":1}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return msg
}

func TestWorker_ProcessOnce(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := NewWorker(repo, publisher,
		WithLogger(testLogger()),
		WithRetryBaseDelay(0),
	)

	enqueue(t, repo)
	enqueue(t, repo)

	worker.ProcessOnce(context.Background())

	if publisher.count() != 2 {
		t.Fatalf("expected 2 published messages, got %d", publisher.count())
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog after processing, got %d", len(pending))
	}
}

func TestWorker_RetriesTransientFailure(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failTimes: 2}
	worker := NewWorker(repo, publisher,
		WithLogger(testLogger()),
		WithMaxAttempts(3),
		WithRetryBaseDelay(time.Millisecond),
	)

	enqueue(t, repo)
	worker.ProcessOnce(context.Background())

	if publisher.count() != 1 {
		t.Fatalf("expected message published after retries, got %d", publisher.count())
	}
}

func TestWorker_MarksFailedAfterExhaustedRetries(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failTimes: 100}
	dlq := &stubPublisher{}
	worker := NewWorker(repo, publisher,
		WithLogger(testLogger()),
		WithMaxAttempts(2),
		WithRetryBaseDelay(0),
		WithDLQPublisher(dlq),
	)

	msg := enqueue(t, repo)
	worker.ProcessOnce(context.Background())

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("failed message must leave the pending queue, got %d", len(pending))
	}

	if dlq.count() != 1 {
		t.Fatalf("expected 1 DLQ message, got %d", dlq.count())
	}
	dlq.mu.Lock()
	dlqMsg := dlq.published[0]
	dlq.mu.Unlock()
	if dlqMsg.ID != msg.ID {
		t.Fatalf("DLQ message must reference original outbox id, got %s", dlqMsg.ID)
	}
}

func TestWorker_RespectsBatchSize(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := NewWorker(repo, publisher,
		WithLogger(testLogger()),
		WithBatchSize(2),
		WithRetryBaseDelay(0),
	)

	for i := 0; i < 5; i++ {
		enqueue(t, repo)
	}

	worker.ProcessOnce(context.Background())
	if publisher.count() != 2 {
		t.Fatalf("expected 2 messages in first batch, got %d", publisher.count())
	}

	worker.ProcessOnce(context.Background())
	worker.ProcessOnce(context.Background())
	if publisher.count() != 5 {
		t.Fatalf("expected all 5 messages published, got %d", publisher.count())
	}
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := NewWorker(repo, publisher,
		WithLogger(testLogger()),
		WithPollInterval(5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorker_RetryBackoffGrows(t *testing.T) {
	worker := NewWorker(memory.NewOutboxRepository(), &stubPublisher{},
		WithLogger(testLogger()),
		WithRetryBaseDelay(10*time.Millisecond),
	)

	first := worker.retryBackoff(1)
	second := worker.retryBackoff(2)
	third := worker.retryBackoff(3)

	if first != 10*time.Millisecond {
		t.Fatalf("expected base delay on first retry, got %v", first)
	}
	if second != 20*time.Millisecond || third != 40*time.Millisecond {
		t.Fatalf("expected exponential growth, got %v then %v", second, third)
	}
}

package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubStore{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: "type"}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxEvents.WithLabelValues("published")); got != 1 {
		t.Fatalf("expected published counter 1, got %v", got)
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubStore{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxEvents.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected failed counter 1, got %v", got)
	}
}

func TestProcessEventsReturnsStoreError(t *testing.T) {
	boom := errors.New("db down")
	ep := newTestPublisher(&stubStore{fetchErr: boom}, &stubPublisher{})

	if err := ep.processEvents(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestPruneDeletesOlderThanRetention(t *testing.T) {
	repo := &stubStore{deleted: 3}
	ep := newTestPublisher(repo, &stubPublisher{})
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }
	ep.retention = 24 * time.Hour

	if err := ep.prune(context.Background()); err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !repo.deleteBefore.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff %v", repo.deleteBefore)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxEvents.WithLabelValues("pruned")); got != 3 {
		t.Fatalf("expected pruned counter 3, got %v", got)
	}
}

func TestPruneDisabledWithoutRetention(t *testing.T) {
	repo := &stubStore{}
	ep := newTestPublisher(repo, &stubPublisher{})

	if err := ep.prune(context.Background()); err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !repo.deleteBefore.IsZero() {
		t.Fatalf("expected no delete, got cutoff %v", repo.deleteBefore)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubStore{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func newTestPublisher(repo *stubStore, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		Store:     repo,
		Publisher: pub,
		Logger:    zerolog.Nop(),
		Metrics:   metrics.NewWithRegistry(prometheus.NewRegistry()),
		BatchSize: 10,
		Interval:  5 * time.Millisecond,
	})
}

type stubStore struct {
	events       []*domain.OutboxEvent
	fetchErr     error
	marked       []string
	deleted      int64
	deleteBefore time.Time
}

func (s *stubStore) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubStore) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubStore) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	s.deleteBefore = before
	return s.deleted, nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	byAcct map[string][]domain.AccountEventType
	total  int
	done   chan struct{}
	want   int
	err    error
}

func newRecordingPublisher(want int) *recordingPublisher {
	return &recordingPublisher{byAcct: make(map[string][]domain.AccountEventType), done: make(chan struct{}), want: want}
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byAcct[ev.AccountID] = append(p.byAcct[ev.AccountID], ev.Type)
	p.total++
	if p.total == p.want {
		close(p.done)
	}
	return p.err
}

func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	const accounts = 20
	sequence := []domain.AccountEventType{
		domain.EventAccountCreated,
		domain.EventAccountUpdated,
		domain.EventAccountDeactivated,
		domain.EventAccountActivated,
		domain.EventAccountDeleted,
	}

	pub := newRecordingPublisher(accounts * len(sequence))
	d := NewDispatcher(4, pub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	var batch []domain.AccountEvent
	for _, typ := range sequence {
		for i := 0; i < accounts; i++ {
			batch = append(batch, domain.AccountEvent{Type: typ, AccountID: fmt.Sprintf("acct-%d", i)})
		}
	}
	d.EnqueueBatch(batch)

	select {
	case <-pub.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for events")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for i := 0; i < accounts; i++ {
		got := pub.byAcct[fmt.Sprintf("acct-%d", i)]
		if len(got) != len(sequence) {
			t.Fatalf("acct-%d: expected %d events, got %d", i, len(sequence), len(got))
		}
		for j := range sequence {
			if got[j] != sequence[j] {
				t.Fatalf("acct-%d: out of order events %v", i, got)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingPublisher(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	for _, id := range []string{"a", "b", "65f1c0ffee", ""} {
		first := d.shardIndex(id)
		if first < 0 || first >= len(d.workers) {
			t.Fatalf("shard %d out of range", first)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard index for %q not stable", id)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingPublisher(0), zerolog.Nop())

	// Workers are not started, so the single buffer fills up.
	for i := 0; i < channelBuffer+10; i++ {
		d.Enqueue(domain.AccountEvent{Type: domain.EventAccountUpdated, AccountID: "x"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_PublishErrorDoesNotStopWorker(t *testing.T) {
	pub := newRecordingPublisher(2)
	pub.err = errors.New("broker down")
	d := NewDispatcher(1, pub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountCreated, AccountID: "y"})
	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountDeleted, AccountID: "y"})

	select {
	case <-pub.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker stopped after a publish error")
	}
}

func TestDispatcher_CloseDrainsQueuedEvents(t *testing.T) {
	pub := newRecordingPublisher(3)
	d := NewDispatcher(2, pub, zerolog.Nop())

	// Queue before starting so Close has something to drain.
	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountCreated, AccountID: "a"})
	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountUpdated, AccountID: "a"})
	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountCreated, AccountID: "b"})
	d.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pub.mu.Lock()
	total := pub.total
	pub.mu.Unlock()
	if total != 3 {
		t.Fatalf("expected 3 published events after Close, got %d", total)
	}

	// Enqueue after Close must not panic.
	d.Enqueue(domain.AccountEvent{Type: domain.EventAccountDeleted, AccountID: "a"})
	if err := d.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

type stubPublisher struct {
	calls int
	err   error
}

func (p *stubPublisher) Publish(context.Context, domain.AccountEvent) error {
	p.calls++
	return p.err
}

func TestFanOut(t *testing.T) {
	failing := &stubPublisher{err: errors.New("audit unavailable")}
	ok := &stubPublisher{}

	err := FanOut{failing, ok}.Publish(context.Background(), domain.AccountEvent{Type: domain.EventAccountCreated})
	if err == nil || !errors.Is(err, failing.err) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Fatalf("expected every publisher to be called once, got %d/%d", failing.calls, ok.calls)
	}

	if err := (FanOut{ok}).Publish(context.Background(), domain.AccountEvent{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := (LogPublisher{Log: zerolog.Nop()}).Publish(context.Background(), domain.AccountEvent{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

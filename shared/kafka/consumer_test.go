package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// fakeReader serves a fixed list of messages and then blocks until cancelled.
type fakeReader struct {
	mu        sync.Mutex
	queue     []skafka.Message
	committed []int64
}

func (f *fakeReader) FetchMessage(ctx context.Context) (skafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return skafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) commits() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...)
}

func runConsumer(t *testing.T, r *fakeReader, h Handler, wantCommits int) []int64 {
	t.Helper()
	c := NewConsumerWithReader(r, nil)
	c.retryDelay = time.Millisecond
	c.MaxAttempts = 3

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx, h)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(r.commits()) < wantCommits {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("timed out waiting for %d commits, got %v", wantCommits, r.commits())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
	return r.commits()
}

func TestConsumer_CommitsHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []skafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("b")}}}
	var seen []string
	var mu sync.Mutex
	commits := runConsumer(t, r, func(ctx context.Context, key, value []byte) error {
		mu.Lock()
		seen = append(seen, string(value))
		mu.Unlock()
		return nil
	}, 2)

	if len(commits) != 2 || commits[0] != 1 || commits[1] != 2 {
		t.Errorf("commits = %v, want [1 2]", commits)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Errorf("handled %d messages, want 2", len(seen))
	}
}

func TestConsumer_RetriesThenSucceeds(t *testing.T) {
	r := &fakeReader{queue: []skafka.Message{{Offset: 7}}}
	var mu sync.Mutex
	calls := 0
	runConsumer(t, r, func(ctx context.Context, key, value []byte) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("rabbit unavailable")
		}
		return nil
	}, 1)

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("handler called %d times, want 3", calls)
	}
}

func TestConsumer_SkipsPoisonMessage(t *testing.T) {
	r := &fakeReader{queue: []skafka.Message{{Offset: 9}, {Offset: 10}}}
	commits := runConsumer(t, r, func(ctx context.Context, key, value []byte) error {
		return errors.New("cannot handle")
	}, 2)
	if len(commits) != 2 {
		t.Errorf("expected both messages to be committed after retries, got %v", commits)
	}
}

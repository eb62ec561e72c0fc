package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectWriter records events and optionally cancels the context or fails
// after a given number of writes.
type collectWriter struct {
	mu         sync.Mutex
	events     []StreamEvent
	cancelAt   int
	cancel     context.CancelFunc
	failAt     int
	failErr    error
	writeCount int
}

func (w *collectWriter) WriteEvent(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writeCount++
	if w.failAt > 0 && w.writeCount > w.failAt {
		return w.failErr
	}

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	w.events = append(w.events, event)

	if w.cancelAt > 0 && w.writeCount == w.cancelAt {
		w.cancel()
	}
	return nil
}

func (w *collectWriter) snapshot() []StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]StreamEvent(nil), w.events...)
}

func TestPublisherEmitsConnectedFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &collectWriter{cancelAt: 2, cancel: cancel}

	p := NewPublisher(time.Millisecond)
	p.Run(ctx, w, "u1")

	events := w.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, "connected", events[0].Type)
	assert.Equal(t, "u1", events[0].UserID)
	assert.NotEmpty(t, events[0].Timestamp)
}

// Once the client goes away, no further emission is attempted: the liveness
// probe runs before every write.
func TestPublisherStopsAfterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// Cancel after the connected event plus one status_update.
	w := &collectWriter{cancelAt: 2, cancel: cancel}

	p := NewPublisher(time.Millisecond)
	p.Run(ctx, w, "u1")

	events := w.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "connected", events[0].Type)
	assert.Equal(t, "status_update", events[1].Type)
	require.NotNil(t, events[1].Data)
	assert.Equal(t, "u1", events[1].Data.UserID)
	assert.NotEmpty(t, events[1].Data.Message)

	// Run has returned; the write count must not grow any further.
	count := w.writeCount
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, count, w.writeCount)
}

func TestPublisherStatusCounterIncreases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &collectWriter{cancelAt: 4, cancel: cancel}

	p := NewPublisher(time.Millisecond)
	p.Run(ctx, w, "u1")

	events := w.snapshot()
	require.Len(t, events, 4)
	assert.Contains(t, events[1].Data.Message, "#1")
	assert.Contains(t, events[2].Data.Message, "#2")
	assert.Contains(t, events[3].Data.Message, "#3")
}

// An emission failure terminates the loop after one best-effort error event.
func TestPublisherEmissionErrorTerminates(t *testing.T) {
	w := &collectWriter{failAt: 1, failErr: errors.New("pipe broken")}

	p := NewPublisher(time.Millisecond)
	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), w, "u1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not terminate after emission error")
	}
	// connected + one failed status_update attempt + one failed error
	// event attempt; only connected was recorded.
	events := w.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "connected", events[0].Type)
}

func TestNewPublisherDefaultsInterval(t *testing.T) {
	assert.Equal(t, DefaultStreamInterval, NewPublisher(0).Interval)
	assert.Equal(t, time.Second, NewPublisher(time.Second).Interval)
}

package websocket

import (
	"sync"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) watcherCount(requestId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[requestId])
}

// A watcher whose buffer is full gets dropped by the hub while other
// goroutines keep broadcasting; the close must never race a send.
func TestConcurrentBroadcastWithSlowWatcher(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	const requestId = "req-1"

	slow := NewClient(hub, nil, requestId)
	hub.register <- slow
	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("backlog")
	}

	healthy := NewClient(hub, nil, requestId)
	hub.register <- healthy

	drained := make(chan int)
	go func() {
		n := 0
		for range healthy.Send {
			n++
		}
		drained <- n
	}()

	payload := []byte(`{"status":"generating_section"}`)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hub.BroadcastProgress(requestId, payload)
			}
		}()
	}
	wg.Wait()

	// The slow watcher must end up removed, never paniced on.
	deadline := time.Now().Add(2 * time.Second)
	for hub.watcherCount(requestId) > 1 {
		if time.Now().After(deadline) {
			t.Fatal("slow watcher was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Dropping healthy closes its Send and ends the drain goroutine.
	hub.unregister <- healthy
	select {
	case n := <-drained:
		if n == 0 {
			t.Error("healthy watcher received no broadcasts")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("healthy watcher Send channel was never closed")
	}

	if got := hub.watcherCount(requestId); got != 0 {
		t.Errorf("watchers remaining = %d, want 0", got)
	}
}

func TestUnregisterUnknownClientIsNoOp(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := NewClient(hub, nil, "req-2")
	hub.register <- client

	// Dropping twice must close Send exactly once.
	hub.unregister <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.Send:
		if ok {
			t.Error("expected closed Send channel, got a value")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send channel was never closed")
	}
}

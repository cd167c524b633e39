package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"legal-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToClientConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	a := &Client{Hub: hub, ClientID: "tab-a", Send: make(chan []byte, 4)}
	other := &Client{Hub: hub, ClientID: "tab-b", Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.ConnectionCount("tab-a") == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToClient("tab-a", "snapshot", map[string]bool{"isTyping": true})

	select {
	case raw := <-a.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "snapshot", msg["type"])
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Empty(t, other.Send)
}

func TestHubDropsSlowConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	slow := &Client{Hub: hub, ClientID: "c1", Send: make(chan []byte)}
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.ConnectionCount("c1") == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToClient("c1", "snapshot", nil)

	assert.Equal(t, 0, hub.ConnectionCount("c1"))
	_, open := <-slow.Send
	assert.False(t, open)

	// A late unregister from the read pump must not close the channel twice
	hub.Unregister(slow)
	hub.Unregister(&Client{ClientID: "unknown"})
}

func TestHubConcurrentSendAndUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	for i := 0; i < 2000; i++ {
		c := &Client{Hub: hub, ClientID: "c1", Send: make(chan []byte, 1)}
		require.True(t, hub.Register(c))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.SendToClient("c1", "snapshot", nil)
			hub.SendToClient("c1", "snapshot", nil)
		}()
		go func() {
			defer wg.Done()
			hub.Unregister(c)
		}()
		wg.Wait()
	}

	require.Eventually(t, func() bool { return hub.ConnectionCount("c1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubSkipsOwnClusterMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	c := &Client{Hub: hub, ClientID: "c1", Send: make(chan []byte, 4)}
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ConnectionCount("c1") == 1 }, time.Second, 5*time.Millisecond)

	own, err := json.Marshal(clusterMessage{Origin: hub.instanceID, TargetClientID: "c1", Message: json.RawMessage(`{"type":"snapshot"}`)})
	require.NoError(t, err)
	hub.handleClusterMessage(own)
	assert.Empty(t, c.Send)

	foreign, err := json.Marshal(clusterMessage{Origin: "other-instance", TargetClientID: "c1", Message: json.RawMessage(`{"type":"snapshot"}`)})
	require.NoError(t, err)
	hub.handleClusterMessage(foreign)

	require.Len(t, c.Send, 1)
	assert.JSONEq(t, `{"type":"snapshot"}`, string(<-c.Send))
}

func TestHubStoppedDoesNotBlockPumps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil, logger.NewNopLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan bool)
	go func() {
		c := &Client{Hub: hub, ClientID: "c1", Send: make(chan []byte, 1)}
		registered := hub.Register(c)
		hub.Unregister(c)
		done <- registered
	}()

	select {
	case registered := <-done:
		assert.False(t, registered)
	case <-time.After(time.Second):
		t.Fatal("register or unregister blocked on a stopped hub")
	}
}

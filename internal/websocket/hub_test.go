package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub(t *testing.T) {
	t.Run("broadcast reaches clients of the same organization only", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		orgA := &Client{hub: hub, orgID: 1, send: make(chan []byte, 4)}
		orgB := &Client{hub: hub, orgID: 2, send: make(chan []byte, 4)}
		hub.add(orgA)
		hub.add(orgB)

		hub.BroadcastStageChange(1, StageChangeEvent{LeadID: "l1", FromStage: "new", ToStage: "contacted"})

		select {
		case data := <-orgA.send:
			assert.Contains(t, string(data), `"lead_id":"l1"`)
		case <-time.After(time.Second):
			t.Fatal("org 1 client never received the event")
		}
		select {
		case <-orgB.send:
			t.Fatal("event leaked to another organization")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("pumps do not block on deregistration after shutdown", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)

		client := &Client{hub: hub, orgID: 1, send: make(chan []byte, 1)}
		hub.add(client)

		cancel()
		select {
		case <-hub.done:
		case <-time.After(time.Second):
			t.Fatal("hub never shut down")
		}
		// closeAll closed the registered client's send channel.
		_, open := <-client.send
		require.False(t, open)

		finished := make(chan struct{})
		go func() {
			hub.drop(client)
			hub.add(&Client{hub: hub, orgID: 1, send: make(chan []byte, 1)})
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("deregistration blocked after hub shutdown")
		}
	})
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"shoplink-push/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func awaitMessage(t *testing.T, send chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered to client")
		return nil
	}
}

func TestHub_NotifyAlertReachesConnectedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := hub.NewClient(nil, "admin-1")
	require.Equal(t, 1, hub.ConnectionsCount())

	record := &models.AdminAlertRecord{
		ID:    primitive.NewObjectID(),
		Type:  "order",
		Title: "New order",
	}
	hub.NotifyAlert(record)

	var event Event
	require.NoError(t, json.Unmarshal(awaitMessage(t, client.send), &event))
	assert.Equal(t, "admin_alert", event.Type)
}

func TestHub_PublishFansOutToEveryClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	first := hub.NewClient(nil, "admin-1")
	second := hub.NewClient(nil, "admin-2")

	hub.Publish(Event{Type: "system", Data: "maintenance"})

	for _, client := range []*Client{first, second} {
		var event Event
		require.NoError(t, json.Unmarshal(awaitMessage(t, client.send), &event))
		assert.Equal(t, "system", event.Type)
	}
}

func TestHub_NewClientDoesNotBlockAfterShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Shutdown()

	registered := make(chan struct{})
	go func() {
		hub.NewClient(nil, "late-admin")
		close(registered)
	}()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("NewClient blocked after hub shutdown")
	}
}

func TestHub_ShutdownDisconnectsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := hub.NewClient(nil, "admin-1")
	require.Equal(t, 1, hub.ConnectionsCount())

	hub.Shutdown()

	select {
	case _, open := <-client.send:
		assert.False(t, open, "send channel should be closed on shutdown")
	case <-time.After(time.Second):
		t.Fatal("client send channel not closed on shutdown")
	}
	assert.Equal(t, 0, hub.ConnectionsCount())
}

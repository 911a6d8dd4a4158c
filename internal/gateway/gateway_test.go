package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBatch_PostsAllMessagesInOneRequest(t *testing.T) {
	var calls int
	var received []Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok"},{"status":"ok"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.SendBatch(context.Background(), []Message{
		{To: "ExponentPushToken[aaa]", Title: "Hello", Body: "First"},
		{To: "ExponentPushToken[bbb]", Title: "Hello", Body: "Second"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	require.Len(t, received, 2)
	assert.Equal(t, "ExponentPushToken[aaa]", received[0].To)
	assert.Equal(t, "ExponentPushToken[bbb]", received[1].To)
}

func TestSendBatch_EmptyBatchIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway should not be called for an empty batch")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	require.NoError(t, client.SendBatch(context.Background(), nil))
}

func TestSendBatch_HTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.SendBatch(context.Background(), []Message{{To: "ExponentPushToken[aaa]"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSendOne_ReturnsTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "ExponentPushToken[ccc]", msg.To)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	ticket, err := client.SendOne(context.Background(), Message{To: "ExponentPushToken[ccc]", Title: "Test"})
	require.NoError(t, err)
	assert.True(t, ticket.OK())
	assert.Equal(t, "ticket-1", ticket.ID)
	assert.Empty(t, ticket.ErrorText())
}

func TestSendOne_ErrorTicketSurfacesGatewayMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"error","message":"\"ExponentPushToken[ccc]\" is not a registered push notification recipient","code":"DeviceNotRegistered"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	ticket, err := client.SendOne(context.Background(), Message{To: "ExponentPushToken[ccc]"})
	require.NoError(t, err)
	assert.False(t, ticket.OK())
	assert.Equal(t, `"ExponentPushToken[ccc]" is not a registered push notification recipient (DeviceNotRegistered)`, ticket.ErrorText())
}

func TestSendOne_EmptyTicketListIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.SendOne(context.Background(), Message{To: "ExponentPushToken[ccc]"})
	require.Error(t, err)
}

func TestTicketErrorText_WithoutCode(t *testing.T) {
	ticket := Ticket{Status: "error", Message: "something went wrong"}
	assert.Equal(t, "something went wrong", ticket.ErrorText())
}

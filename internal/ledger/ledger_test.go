package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"shoplink-push/internal/models"
	"shoplink-push/pkg/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStorage is an in-memory Storage for tests
type memoryStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[key], nil
}

func (m *memoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = data
	return nil
}

type recordingPresenter struct {
	titles []string
	data   []map[string]interface{}
}

func (p *recordingPresenter) Present(_ context.Context, title, _ string, data map[string]interface{}) error {
	p.titles = append(p.titles, title)
	p.data = append(p.data, data)
	return nil
}

func TestAddNotification_TranslatesAndPrependsUnread(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, i18n.New())
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationSuccess, map[string]string{"name": "Alice"})
	entry := l.AddNotification(context.Background(), "notification.order_placed.title", "notification.order_placed.message", models.NotificationInfo, map[string]string{"orderId": "42"})

	entries := l.Entries()
	require.Len(t, entries, 2)
	// Newest first
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "Order placed", entries[0].Title)
	assert.Equal(t, "Your order #42 has been placed successfully", entries[0].Message)
	assert.False(t, entries[0].Read)
	assert.Equal(t, 2, l.UnreadCount())
}

func TestAddNotification_PresentsWithLocalOriginMarker(t *testing.T) {
	presenter := &recordingPresenter{}
	l := New(newMemoryStorage(), presenter, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, map[string]string{"name": "Alice"})

	require.Len(t, presenter.data, 1)
	assert.Equal(t, true, presenter.data[0][LocalOriginKey])
}

func TestHandleReceived_IgnoresLocalOriginEcho(t *testing.T) {
	l := New(newMemoryStorage(), nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	l.HandleReceived(Push{Title: "Echo", Body: "From ourselves", Data: map[string]interface{}{LocalOriginKey: true}})
	assert.Empty(t, l.Entries())

	// The marker sometimes survives serialization only as a string
	l.HandleReceived(Push{Title: "Echo", Body: "From ourselves", Data: map[string]interface{}{LocalOriginKey: "true"}})
	assert.Empty(t, l.Entries())

	l.HandleReceived(Push{Title: "Real", Body: "From the server", Data: map[string]interface{}{"type": "warning"}})
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Real", entries[0].Title)
	assert.Equal(t, models.NotificationWarning, entries[0].Type)
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	l := New(newMemoryStorage(), nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	first := l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	l.AddNotification(context.Background(), "notification.cart_reminder.title", "notification.cart_reminder.message", models.NotificationInfo, map[string]string{"count": "3"})
	require.Equal(t, 2, l.UnreadCount())

	l.MarkRead(context.Background(), first.ID)
	assert.Equal(t, 1, l.UnreadCount())

	// Marking the same entry again is a no-op
	l.MarkRead(context.Background(), first.ID)
	assert.Equal(t, 1, l.UnreadCount())

	l.MarkAllRead(context.Background())
	assert.Equal(t, 0, l.UnreadCount())
}

func TestClear(t *testing.T) {
	l := New(newMemoryStorage(), nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	l.Clear(context.Background())

	assert.Empty(t, l.Entries())
	assert.Equal(t, 0, l.UnreadCount())
}

func TestLoad_SwitchingUsersNeverLeaksEntries(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, nil)

	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	require.Len(t, l.Entries(), 1)

	require.NoError(t, l.Load(context.Background(), "bob@shop.test"))
	assert.Empty(t, l.Entries())

	// Alice's list survives in storage and reloads intact
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	assert.Len(t, l.Entries(), 1)
}

func TestLoad_KeyIsCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, StorageKey("alice@shop.test"), StorageKey("  Alice@Shop.Test "))
}

func TestPersist_SuppressedWithoutIdentity(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, nil)

	// No Load: mutations stay in memory only
	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)

	assert.Equal(t, 0, storage.saves)
	assert.Len(t, l.Entries(), 1)
}

func TestPersist_SaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	storage := newMemoryStorage()
	storage.saveErr = errors.New("disk full")
	l := New(storage, nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	assert.Len(t, l.Entries(), 1)
}

func TestLoad_FailedLoadDoesNotAdoptIdentityForPersist(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, nil)
	key := StorageKey("alice@shop.test")

	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	l.AddNotification(context.Background(), "notification.cart_reminder.title", "notification.cart_reminder.message", models.NotificationInfo, map[string]string{"count": "3"})
	stored := storage.data[key]
	require.NotEmpty(t, stored)

	// Storage flakes for one load; the identity was never fully loaded, so
	// mutations must keep working in memory without overwriting the stored
	// history with the near-empty list.
	storage.loadErr = errors.New("storage offline")
	require.Error(t, l.Load(context.Background(), "alice@shop.test"))

	l.HandleReceived(Push{Title: "Real", Body: "From the server"})
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, stored, storage.data[key])

	// Once storage recovers, the full history is still there
	storage.loadErr = nil
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	assert.Len(t, l.Entries(), 2)
}

func TestLoad_CorruptSnapshotDiscarded(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[StorageKey("alice@shop.test")] = []byte("{not json")

	l := New(storage, nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	assert.Empty(t, l.Entries())
}

func TestLoad_EmptyEmailUnloads(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))
	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	savesBefore := storage.saves

	require.NoError(t, l.Load(context.Background(), ""))
	assert.Empty(t, l.Entries())

	// Mutations while signed out never touch storage
	l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationInfo, nil)
	assert.Equal(t, savesBefore, storage.saves)
}

func TestSnapshotRoundTrip(t *testing.T) {
	storage := newMemoryStorage()
	l := New(storage, nil, nil)
	require.NoError(t, l.Load(context.Background(), "alice@shop.test"))

	entry := l.AddNotification(context.Background(), "notification.welcome.title", "notification.welcome.message", models.NotificationError, map[string]string{"name": "Alice"})

	var persisted []models.LocalNotification
	require.NoError(t, json.Unmarshal(storage.data[StorageKey("alice@shop.test")], &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, entry.ID, persisted[0].ID)
	assert.Equal(t, models.NotificationError, persisted[0].Type)
	assert.WithinDuration(t, time.Now(), persisted[0].Time, 5*time.Second)
}

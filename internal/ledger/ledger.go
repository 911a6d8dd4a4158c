// Package ledger maintains the per-user, newest-first list of in-app
// notifications, whether they arrived by push or were raised locally. The
// list is the only read path the UI consumes.
package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"shoplink-push/internal/models"
	"shoplink-push/pkg/i18n"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LocalOriginKey is the payload flag marking a notification the client
// itself scheduled for display. The receive path uses it to suppress the
// platform echo of a locally raised notification.
const LocalOriginKey = "localOrigin"

// Storage is per-user key-value persistence for the serialized list
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Presenter schedules an immediate platform-level notification display.
// Optional capability: the ledger holds a nullable reference checked at
// call time.
type Presenter interface {
	Present(ctx context.Context, title, body string, data map[string]interface{}) error
}

// Push is an inbound platform notification as seen by the receive path
type Push struct {
	Title string
	Body  string
	Data  map[string]interface{}
}

// Ledger is the user-scoped notification list. All list logic is
// synchronous; only storage round-trips touch I/O. Persistence failures are
// logged and the in-memory state stays authoritative for the session.
type Ledger struct {
	storage    Storage
	presenter  Presenter
	translator *i18n.Translator
	log        *logrus.Entry

	mu        sync.Mutex
	entries   []models.LocalNotification
	loadedKey string // empty when no identity is loaded
}

func New(storage Storage, presenter Presenter, translator *i18n.Translator) *Ledger {
	if translator == nil {
		translator = i18n.New()
	}
	return &Ledger{
		storage:    storage,
		presenter:  presenter,
		translator: translator,
		log:        logrus.WithField("component", "ledger"),
	}
}

// StorageKey derives the deterministic per-user persistence key from the
// owning identity's email
func StorageKey(email string) string {
	return "ledger:" + strings.ToLower(strings.TrimSpace(email))
}

// Load replaces the in-memory list with the persisted one for the given
// identity. The previous user's entries are fully cleared before anything
// is read, so a slow load can never leak them into the new user's view.
// An empty email unloads the ledger.
func (l *Ledger) Load(ctx context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.loadedKey = ""

	if email == "" {
		return nil
	}

	key := StorageKey(email)

	data, err := l.storage.Load(ctx, key)
	if err != nil {
		// The identity is not adopted for persistence: a mutation after a
		// failed load must never overwrite the stored history with the
		// near-empty in-memory list.
		l.log.WithError(err).Warn("failed to load ledger snapshot")
		return err
	}
	l.loadedKey = key
	if len(data) == 0 {
		return nil
	}

	var entries []models.LocalNotification
	if err := json.Unmarshal(data, &entries); err != nil {
		l.log.WithError(err).Warn("discarding corrupt ledger snapshot")
		return nil
	}
	l.entries = entries
	return nil
}

// HandleReceived appends a push that arrived while the app is active,
// unless its payload carries the local-origin marker: that push is the
// platform echoing a notification AddNotification already inserted.
func (l *Ledger) HandleReceived(p Push) {
	if isLocalOrigin(p.Data) {
		return
	}

	entry := models.LocalNotification{
		ID:      uuid.NewString(),
		Title:   p.Title,
		Message: p.Body,
		Type:    pushType(p.Data),
		Time:    time.Now(),
	}

	l.mu.Lock()
	l.prepend(entry)
	snapshot := l.snapshot()
	l.mu.Unlock()

	l.persist(context.Background(), snapshot)
}

// AddNotification raises a local notification: the two content keys are
// translated and interpolated, the entry is prepended unread, and an
// immediate platform display is scheduled carrying the local-origin marker
// so the receive path won't append it a second time.
func (l *Ledger) AddNotification(ctx context.Context, titleKey, messageKey string, typ models.NotificationType, params map[string]string) models.LocalNotification {
	entry := models.LocalNotification{
		ID:      uuid.NewString(),
		Title:   l.translator.T(titleKey, params),
		Message: l.translator.T(messageKey, params),
		Type:    typ,
		Params:  params,
		Time:    time.Now(),
	}

	l.mu.Lock()
	l.prepend(entry)
	snapshot := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snapshot)

	if l.presenter != nil {
		data := map[string]interface{}{
			LocalOriginKey: true,
			"type":         string(typ),
		}
		if err := l.presenter.Present(ctx, entry.Title, entry.Message, data); err != nil {
			l.log.WithError(err).Warn("failed to present local notification")
		}
	}

	return entry
}

// MarkRead flips one entry to read
func (l *Ledger) MarkRead(ctx context.Context, id string) {
	l.mu.Lock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Read = true
			break
		}
	}
	snapshot := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
}

// MarkAllRead flips every entry to read
func (l *Ledger) MarkAllRead(ctx context.Context) {
	l.mu.Lock()
	for i := range l.entries {
		l.entries[i].Read = true
	}
	snapshot := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
}

// Clear empties the list
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.entries = nil
	snapshot := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
}

// Entries returns a copy of the list, newest first
func (l *Ledger) Entries() []models.LocalNotification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LocalNotification, len(l.entries))
	copy(out, l.entries)
	return out
}

// UnreadCount re-derives the unread total from the list on every call;
// it is never cached independently of the entries.
func (l *Ledger) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, entry := range l.entries {
		if !entry.Read {
			count++
		}
	}
	return count
}

func (l *Ledger) prepend(entry models.LocalNotification) {
	l.entries = append([]models.LocalNotification{entry}, l.entries...)
}

// ledgerSnapshot pins the list and its owner's key at the moment of a
// mutation, so a persist racing an identity switch writes the list it
// belongs to or nothing at all.
type ledgerSnapshot struct {
	key     string
	entries []models.LocalNotification
}

func (l *Ledger) snapshot() ledgerSnapshot {
	entries := make([]models.LocalNotification, len(l.entries))
	copy(entries, l.entries)
	return ledgerSnapshot{key: l.loadedKey, entries: entries}
}

func (l *Ledger) persist(ctx context.Context, snapshot ledgerSnapshot) {
	if snapshot.key == "" {
		return // no identity loaded, nothing durable to write
	}

	data, err := json.Marshal(snapshot.entries)
	if err != nil {
		l.log.WithError(err).Warn("failed to serialize ledger")
		return
	}
	if err := l.storage.Save(ctx, snapshot.key, data); err != nil {
		// In-memory state stays authoritative for the session
		l.log.WithError(err).Warn("failed to persist ledger snapshot")
	}
}

func isLocalOrigin(data map[string]interface{}) bool {
	switch v := data[LocalOriginKey].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func pushType(data map[string]interface{}) models.NotificationType {
	if raw, ok := data["type"].(string); ok && raw != "" {
		return models.NotificationType(raw)
	}
	return models.NotificationInfo
}

package services

import (
	"context"

	"shoplink-push/internal/gateway"
	"shoplink-push/internal/models"
	"shoplink-push/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeTokenDirectory serves canned token rows keyed by user id
type fakeTokenDirectory struct {
	tokens  map[string]models.DeviceToken
	listErr error
	synced  []string
}

func newFakeTokenDirectory(tokens ...models.DeviceToken) *fakeTokenDirectory {
	byID := make(map[string]models.DeviceToken, len(tokens))
	for _, t := range tokens {
		byID[t.UserID] = t
	}
	return &fakeTokenDirectory{tokens: byID}
}

func (f *fakeTokenDirectory) Sync(_ context.Context, userID string, _ store.TokenUpdate) error {
	f.synced = append(f.synced, userID)
	return nil
}

func (f *fakeTokenDirectory) Get(_ context.Context, userID string) (*models.DeviceToken, error) {
	t, ok := f.tokens[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTokenDirectory) All(_ context.Context) ([]models.DeviceToken, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.DeviceToken, 0, len(f.tokens))
	for _, t := range f.tokens {
		if t.Reachable() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenDirectory) ByRoles(_ context.Context, roles []models.Role) ([]models.DeviceToken, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}
	var out []models.DeviceToken
	for _, t := range f.tokens {
		if t.Reachable() && wanted[t.Role] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenDirectory) ByUserIDs(_ context.Context, ids []string) ([]models.DeviceToken, error) {
	var out []models.DeviceToken
	for _, id := range ids {
		if t, ok := f.tokens[id]; ok && t.Reachable() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenDirectory) Count(_ context.Context) (int64, error) {
	return int64(len(f.tokens)), nil
}

// fakePushSender records every outbound call
type fakePushSender struct {
	batches  [][]gateway.Message
	batchErr error
	ticket   gateway.Ticket
	oneErr   error
	lastSent gateway.Message
}

func (f *fakePushSender) SendBatch(_ context.Context, messages []gateway.Message) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, messages)
	return nil
}

func (f *fakePushSender) SendOne(_ context.Context, message gateway.Message) (gateway.Ticket, error) {
	f.lastSent = message
	if f.oneErr != nil {
		return gateway.Ticket{}, f.oneErr
	}
	return f.ticket, nil
}

// fakeBroadcastRecorder keeps records in memory
type fakeBroadcastRecorder struct {
	records   []*models.BroadcastRecord
	createErr error
}

func (f *fakeBroadcastRecorder) Create(_ context.Context, record *models.BroadcastRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = primitive.NewObjectID()
	record.Status = models.BroadcastStatusPending
	f.records = append(f.records, record)
	return nil
}

func (f *fakeBroadcastRecorder) MarkSent(_ context.Context, id primitive.ObjectID) error {
	for _, r := range f.records {
		if r.ID == id {
			r.Status = models.BroadcastStatusSent
		}
	}
	return nil
}

func (f *fakeBroadcastRecorder) List(_ context.Context, _ int64) ([]models.BroadcastRecord, error) {
	out := make([]models.BroadcastRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

// fakeAlertRecorder keeps alert records in memory
type fakeAlertRecorder struct {
	records   []*models.AdminAlertRecord
	createErr error
}

func (f *fakeAlertRecorder) Create(_ context.Context, record *models.AdminAlertRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = primitive.NewObjectID()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAlertRecorder) List(_ context.Context, _ int64) ([]models.AdminAlertRecord, error) {
	out := make([]models.AdminAlertRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeAlertRecorder) MarkRead(_ context.Context, alertID primitive.ObjectID, userID string) error {
	for _, r := range f.records {
		if r.ID == alertID {
			r.ReadBy = append(r.ReadBy, userID)
		}
	}
	return nil
}

// fakeRoleDirectory is a canned identity service
type fakeRoleDirectory struct {
	roles map[string]models.Role
}

func (f *fakeRoleDirectory) GetRole(_ context.Context, userID string) (models.Role, error) {
	return f.roles[userID], nil
}

func (f *fakeRoleDirectory) ElevatedUserIDs(_ context.Context) ([]string, error) {
	var out []string
	for id, role := range f.roles {
		if role.IsElevated() {
			out = append(out, id)
		}
	}
	return out, nil
}

// fakeNotifier counts live feed notifications
type fakeNotifier struct {
	notified []*models.AdminAlertRecord
}

func (f *fakeNotifier) NotifyAlert(record *models.AdminAlertRecord) {
	f.notified = append(f.notified, record)
}

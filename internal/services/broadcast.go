package services

import (
	"context"
	"fmt"

	"shoplink-push/internal/gateway"
	"shoplink-push/internal/models"
	"shoplink-push/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenDirectory is the Token Store as the dispatchers see it. The store is
// the sole source of truth: no token set is cached across dispatch calls.
type TokenDirectory interface {
	Sync(ctx context.Context, userID string, upd store.TokenUpdate) error
	Get(ctx context.Context, userID string) (*models.DeviceToken, error)
	All(ctx context.Context) ([]models.DeviceToken, error)
	ByRoles(ctx context.Context, roles []models.Role) ([]models.DeviceToken, error)
	ByUserIDs(ctx context.Context, ids []string) ([]models.DeviceToken, error)
	Count(ctx context.Context) (int64, error)
}

// PushSender is the outbound gateway surface used by dispatchers
type PushSender interface {
	SendBatch(ctx context.Context, messages []gateway.Message) error
	SendOne(ctx context.Context, message gateway.Message) (gateway.Ticket, error)
}

// BroadcastRecorder persists broadcast send records
type BroadcastRecorder interface {
	Create(ctx context.Context, record *models.BroadcastRecord) error
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, limit int64) ([]models.BroadcastRecord, error)
}

// BroadcastResult is the outward contract of SendBroadcast
type BroadcastResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// BroadcastService delivers one message to every device with a known token.
// The batched gateway call is fire-and-forget: per-recipient tickets are not
// inspected, and an occasional dropped delivery is an accepted tradeoff for
// marketing sends. This differs from the test-send diagnostic, which does
// surface per-message gateway errors.
type BroadcastService struct {
	tokens  TokenDirectory
	records BroadcastRecorder
	gateway PushSender
	log     *logrus.Entry
}

func NewBroadcastService(tokens TokenDirectory, records BroadcastRecorder, sender PushSender) *BroadcastService {
	return &BroadcastService{
		tokens:  tokens,
		records: records,
		gateway: sender,
		log:     logrus.WithField("service", "broadcast"),
	}
}

// SendBroadcast persists a pending record, fans the message out to every
// reachable token in a single batched call, then marks the record sent.
// Zero reachable devices is not an error: the record is still marked sent
// and the count is 0. A failed gateway call leaves the record pending and
// propagates to the caller.
func (s *BroadcastService) SendBroadcast(ctx context.Context, title, body string, data map[string]interface{}) (BroadcastResult, error) {
	record := &models.BroadcastRecord{
		Title: title,
		Body:  body,
		Data:  data,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return BroadcastResult{}, fmt.Errorf("failed to create broadcast record: %w", err)
	}

	tokens, err := s.tokens.All(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("failed to read device tokens: %w", err)
	}

	if len(tokens) == 0 {
		if err := s.records.MarkSent(ctx, record.ID); err != nil {
			s.log.WithError(err).Warn("failed to mark empty broadcast as sent")
		}
		s.log.WithField("broadcast_id", record.ID.Hex()).Info("broadcast had no reachable devices")
		return BroadcastResult{Success: true, Count: 0}, nil
	}

	messages := make([]gateway.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, gateway.Message{
			To:        token.Token,
			Title:     title,
			Body:      body,
			Data:      data,
			Priority:  "high",
			Sound:     "default",
			ChannelID: "default",
		})
	}

	if err := s.gateway.SendBatch(ctx, messages); err != nil {
		// Record stays pending so an operator can see the incomplete send
		return BroadcastResult{}, fmt.Errorf("broadcast fan-out failed: %w", err)
	}

	if err := s.records.MarkSent(ctx, record.ID); err != nil {
		s.log.WithError(err).Warn("broadcast delivered but record not marked sent")
	}

	s.log.WithFields(logrus.Fields{
		"broadcast_id": record.ID.Hex(),
		"recipients":   len(messages),
	}).Info("broadcast dispatched")

	return BroadcastResult{Success: true, Count: len(messages)}, nil
}

// Broadcasts returns recent send records, newest first
func (s *BroadcastService) Broadcasts(ctx context.Context, limit int64) ([]models.BroadcastRecord, error) {
	return s.records.List(ctx, limit)
}

package services

import (
	"context"
	"fmt"

	"shoplink-push/internal/gateway"
	"shoplink-push/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertRecorder persists admin alert records
type AlertRecorder interface {
	Create(ctx context.Context, record *models.AdminAlertRecord) error
	List(ctx context.Context, limit int64) ([]models.AdminAlertRecord, error)
	MarkRead(ctx context.Context, alertID primitive.ObjectID, userID string) error
}

// RoleDirectory is the identity/role service boundary: the authoritative
// role source, as opposed to the role cached on token rows.
type RoleDirectory interface {
	GetRole(ctx context.Context, userID string) (models.Role, error)
	ElevatedUserIDs(ctx context.Context) ([]string, error)
}

// AlertNotifier pushes a freshly persisted alert to connected dashboard
// clients. Optional capability: the service holds a nullable reference
// checked at call time.
type AlertNotifier interface {
	NotifyAlert(record *models.AdminAlertRecord)
}

// AdminAlertService fans administrative events out to elevated-role devices.
// It is best-effort by contract: it is invoked as a side effect of unrelated
// domain actions (order placement and the like) and must never block or fail
// them, so every error past record persistence is logged and swallowed.
type AdminAlertService struct {
	tokens    TokenDirectory
	records   AlertRecorder
	directory RoleDirectory
	gateway   PushSender
	notifier  AlertNotifier
	log       *logrus.Entry
}

func NewAdminAlertService(tokens TokenDirectory, records AlertRecorder, directory RoleDirectory, sender PushSender, notifier AlertNotifier) *AdminAlertService {
	return &AdminAlertService{
		tokens:    tokens,
		records:   records,
		directory: directory,
		gateway:   sender,
		notifier:  notifier,
		log:       logrus.WithField("service", "admin_alert"),
	}
}

// TriggerAdminAlert persists the alert record first, so the in-app admin
// feed shows it regardless of push outcome, then fans out to elevated-role
// tokens. Never returns an error to the caller.
func (s *AdminAlertService) TriggerAdminAlert(ctx context.Context, alertType, title, body string, data map[string]interface{}) {
	record := &models.AdminAlertRecord{
		Type:  alertType,
		Title: title,
		Body:  body,
		Data:  data,
	}
	if err := s.records.Create(ctx, record); err != nil {
		s.log.WithError(err).WithField("type", alertType).Error("failed to persist admin alert")
		return
	}

	if s.notifier != nil {
		s.notifier.NotifyAlert(record)
	}

	tokens, err := s.resolveAdminTokens(ctx)
	if err != nil {
		s.log.WithError(err).WithField("alert_id", record.ID.Hex()).Warn("failed to resolve admin tokens")
		return
	}
	if len(tokens) == 0 {
		s.log.WithField("alert_id", record.ID.Hex()).Info("no admin devices reachable for alert")
		return
	}

	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	// Reserved keys win over caller-supplied data
	payload["type"] = "admin_alert"
	payload["alert_id"] = record.ID.Hex()

	messages := make([]gateway.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, gateway.Message{
			To:        token.Token,
			Title:     title,
			Body:      body,
			Data:      payload,
			Priority:  "high",
			Sound:     "default",
			ChannelID: "default",
		})
	}

	if err := s.gateway.SendBatch(ctx, messages); err != nil {
		s.log.WithError(err).WithField("alert_id", record.ID.Hex()).Warn("admin alert fan-out failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"alert_id":   record.ID.Hex(),
		"type":       alertType,
		"recipients": len(messages),
	}).Info("admin alert dispatched")
}

// resolveAdminTokens prefers the role cached on token rows. When that yields
// nothing it cross-references the identity service's elevated users and
// intersects with the token store by user id: the cached role can be stale
// relative to the authoritative one. Every fallback hit is logged so role
// drift shows up in production instead of being silently tolerated.
func (s *AdminAlertService) resolveAdminTokens(ctx context.Context) ([]models.DeviceToken, error) {
	tokens, err := s.tokens.ByRoles(ctx, models.ElevatedRoles())
	if err != nil {
		return nil, fmt.Errorf("role-filtered token query failed: %w", err)
	}
	if len(tokens) > 0 {
		return tokens, nil
	}

	s.log.Warn("no elevated roles on token rows, falling back to identity service lookup")

	ids, err := s.directory.ElevatedUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity service lookup failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	tokens, err = s.tokens.ByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("token intersection query failed: %w", err)
	}
	return tokens, nil
}

// Alerts returns recent alert records, newest first
func (s *AdminAlertService) Alerts(ctx context.Context, limit int64) ([]models.AdminAlertRecord, error) {
	return s.records.List(ctx, limit)
}

// MarkAlertRead records that userID viewed the alert
func (s *AdminAlertService) MarkAlertRead(ctx context.Context, alertID primitive.ObjectID, userID string) error {
	return s.records.MarkRead(ctx, alertID, userID)
}

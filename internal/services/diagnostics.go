package services

import (
	"context"
	"fmt"

	"shoplink-push/internal/gateway"

	"github.com/sirupsen/logrus"
)

// HealthStatus classifies a user's admin-token enrollment
type HealthStatus string

// Token health statuses
const (
	HealthMissing  HealthStatus = "missing"
	HealthMismatch HealthStatus = "mismatch"
	HealthOK       HealthStatus = "ok"
)

// TokenHealth is the structured result of a token health check
type TokenHealth struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

// TestSendResult is the structured result of a single-target test send
type TestSendResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DiagnosticsService answers "will a broadcast reach anyone" and "is this
// user correctly enrolled as admin". All operations are read-only against
// the token store and return structured results rather than failing, since
// they back human-facing debug tools.
type DiagnosticsService struct {
	tokens  TokenDirectory
	gateway PushSender
	log     *logrus.Entry
}

func NewDiagnosticsService(tokens TokenDirectory, sender PushSender) *DiagnosticsService {
	return &DiagnosticsService{
		tokens:  tokens,
		gateway: sender,
		log:     logrus.WithField("service", "diagnostics"),
	}
}

// ReachabilityCount returns the total token row count. The broadcast UI
// warns before sending when this is zero.
func (s *DiagnosticsService) ReachabilityCount(ctx context.Context) (int64, error) {
	return s.tokens.Count(ctx)
}

// CheckAdminTokenHealth compares the role cached on the user's token row
// against the elevated set. This is a diagnostic over the cache, not a live
// authorization check.
func (s *DiagnosticsService) CheckAdminTokenHealth(ctx context.Context, userID string) (TokenHealth, error) {
	token, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return TokenHealth{}, err
	}

	if token == nil {
		return TokenHealth{
			Status:  HealthMissing,
			Message: "no device token registered for this user",
		}, nil
	}

	if !token.Role.IsElevated() {
		return TokenHealth{
			Status:  HealthMismatch,
			Message: fmt.Sprintf("device token registered with role %q, which does not receive admin alerts", token.Role),
		}, nil
	}

	return TokenHealth{
		Status:  HealthOK,
		Message: fmt.Sprintf("device token registered with elevated role %q", token.Role),
	}, nil
}

// SendTestNotification sends exactly one message to exactly one token and
// parses the gateway's per-message ticket. On failure the gateway's own
// error is returned verbatim so an operator can act on it.
func (s *DiagnosticsService) SendTestNotification(ctx context.Context, token, title, body string) TestSendResult {
	ticket, err := s.gateway.SendOne(ctx, gateway.Message{
		To:        token,
		Title:     title,
		Body:      body,
		Data:      map[string]interface{}{"type": "test"},
		Priority:  "high",
		Sound:     "default",
		ChannelID: "default",
	})
	if err != nil {
		s.log.WithError(err).Warn("test send failed before reaching the gateway")
		return TestSendResult{Success: false, Error: err.Error()}
	}

	if !ticket.OK() {
		return TestSendResult{Success: false, Error: ticket.ErrorText()}
	}
	return TestSendResult{Success: true}
}

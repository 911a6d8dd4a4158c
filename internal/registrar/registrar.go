// Package registrar runs on the client and keeps the token store in sync
// with the current (identity, token, role) triple. Push capability is
// strictly optional: every platform failure is recorded as a human-readable
// reason and the host application keeps working without push.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shoplink-push/internal/models"
	"shoplink-push/internal/store"

	"github.com/sirupsen/logrus"
)

// PermissionStatus mirrors the platform's notification permission state
type PermissionStatus string

// Permission states
const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

// PushCapability is the host platform's push surface. It is a statically
// declared interface; callers hold a concrete implementation rather than
// resolving one dynamically.
type PushCapability interface {
	Supported() bool
	PermissionStatus(ctx context.Context) (PermissionStatus, error)
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	AcquireToken(ctx context.Context) (string, error)
	EnsureChannel(ctx context.Context, channelID string) error
}

// TokenSink receives merge-upserts of the (identity, token, role) triple
type TokenSink interface {
	Sync(ctx context.Context, userID string, upd store.TokenUpdate) error
}

// Identity is the signed-in account as the identity service reports it
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	Role        models.Role
}

// IdentityStream exposes the current identity and change notifications.
// Subscribe returns an unsubscribe func for deterministic teardown.
type IdentityStream interface {
	Current() *Identity
	Subscribe(fn func(*Identity)) (unsubscribe func())
}

// Metadata is non-authoritative device information synced alongside a token
type Metadata struct {
	Platform    string
	DeviceModel string
}

// RegistrationResult is the outcome of one registration attempt. Token and
// Reason are mutually exclusive: an empty token always comes with a reason.
type RegistrationResult struct {
	Token  string
	Reason string
}

const defaultChannelID = "default"

// Registrar acquires a push token from the platform and re-syncs the token
// store whenever identity, token, or role changes
type Registrar struct {
	capability PushCapability
	sink       TokenSink
	identity   IdentityStream
	metadata   Metadata
	timeout    time.Duration
	log        *logrus.Entry

	mu          sync.Mutex
	last        RegistrationResult
	unsubscribe func()
}

func New(capability PushCapability, sink TokenSink, identity IdentityStream, metadata Metadata, acquireTimeout time.Duration) *Registrar {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}
	return &Registrar{
		capability: capability,
		sink:       sink,
		identity:   identity,
		metadata:   metadata,
		timeout:    acquireTimeout,
		log:        logrus.WithField("component", "registrar"),
	}
}

// Register requests permission if needed and acquires a push token, bounded
// by the configured timeout. Never returns an error: any denial, timeout, or
// platform failure yields an empty token plus a human-readable reason.
func (r *Registrar) Register(ctx context.Context) RegistrationResult {
	result := r.register(ctx)

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	if result.Reason != "" {
		r.log.WithField("reason", result.Reason).Info("push registration unavailable")
	}
	return result
}

func (r *Registrar) register(ctx context.Context) RegistrationResult {
	if !r.capability.Supported() {
		return RegistrationResult{Reason: "push notifications are not supported on this device"}
	}

	// Channel declaration is a registration-time concern: without it the
	// platform may drop messages silently. Creation is idempotent.
	if err := r.capability.EnsureChannel(ctx, defaultChannelID); err != nil {
		r.log.WithError(err).Warn("failed to ensure notification channel")
	}

	status, err := r.capability.PermissionStatus(ctx)
	if err != nil {
		return RegistrationResult{Reason: fmt.Sprintf("failed to check notification permission: %v", err)}
	}
	if status == PermissionUndetermined {
		status, err = r.capability.RequestPermission(ctx)
		if err != nil {
			return RegistrationResult{Reason: fmt.Sprintf("failed to request notification permission: %v", err)}
		}
	}
	if status != PermissionGranted {
		return RegistrationResult{Reason: "notification permission was not granted"}
	}

	acquireCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	token, err := r.capability.AcquireToken(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return RegistrationResult{Reason: fmt.Sprintf("timed out acquiring push token after %s", r.timeout)}
		}
		return RegistrationResult{Reason: fmt.Sprintf("failed to acquire push token: %v", err)}
	}

	return RegistrationResult{Token: token}
}

// Status returns the outcome of the most recent registration attempt
func (r *Registrar) Status() RegistrationResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// SyncToken merge-upserts the triple into the token store. Idempotent. An
// empty token leaves any previously stored token untouched, so a failed
// re-registration never wipes a working one.
func (r *Registrar) SyncToken(ctx context.Context, userID, token string, role models.Role, metadata Metadata) error {
	upd := store.TokenUpdate{Role: &role}
	if token != "" {
		upd.Token = &token
	}
	if metadata.Platform != "" {
		upd.Platform = &metadata.Platform
	}
	if metadata.DeviceModel != "" {
		upd.DeviceModel = &metadata.DeviceModel
	}

	if err := r.sink.Sync(ctx, userID, upd); err != nil {
		return fmt.Errorf("failed to sync device token: %w", err)
	}
	return nil
}

// Start subscribes to the identity stream and re-registers on every change.
// The current identity, if any, is synced immediately.
func (r *Registrar) Start(ctx context.Context) {
	handle := func(identity *Identity) {
		if identity == nil {
			return // signed out, nothing to sync
		}
		result := r.Register(ctx)
		if err := r.SyncToken(ctx, identity.UserID, result.Token, identity.Role, r.metadata); err != nil {
			r.log.WithError(err).Warn("token sync failed")
		}
	}

	r.mu.Lock()
	r.unsubscribe = r.identity.Subscribe(handle)
	r.mu.Unlock()

	handle(r.identity.Current())
}

// Stop tears the identity subscription down
func (r *Registrar) Stop() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

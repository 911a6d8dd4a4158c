package services

import (
	"context"
	"errors"
	"testing"

	"shoplink-push/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBroadcast_FansOutToAllTokensInOneBatch(t *testing.T) {
	tokens := newFakeTokenDirectory(
		models.DeviceToken{UserID: "u1", Token: "ExponentPushToken[aaa]", Role: models.RoleCustomer},
		models.DeviceToken{UserID: "u2", Token: "ExponentPushToken[bbb]", Role: models.RoleCustomer},
		models.DeviceToken{UserID: "u3", Token: "ExponentPushToken[ccc]", Role: models.RoleAdmin},
	)
	records := &fakeBroadcastRecorder{}
	sender := &fakePushSender{}
	svc := NewBroadcastService(tokens, records, sender)

	result, err := svc.SendBroadcast(context.Background(), "Sale", "Everything half off", map[string]interface{}{"screen": "sale"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Count)

	require.Len(t, sender.batches, 1)
	assert.Len(t, sender.batches[0], 3)
	for _, msg := range sender.batches[0] {
		assert.Equal(t, "Sale", msg.Title)
		assert.Equal(t, "high", msg.Priority)
		assert.Equal(t, "default", msg.ChannelID)
	}

	require.Len(t, records.records, 1)
	assert.Equal(t, models.BroadcastStatusSent, records.records[0].Status)
}

func TestSendBroadcast_ZeroDevicesSucceedsWithCountZero(t *testing.T) {
	tokens := newFakeTokenDirectory()
	records := &fakeBroadcastRecorder{}
	sender := &fakePushSender{}
	svc := NewBroadcastService(tokens, records, sender)

	result, err := svc.SendBroadcast(context.Background(), "Sale", "Everything half off", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Count)

	assert.Empty(t, sender.batches)
	require.Len(t, records.records, 1)
	assert.Equal(t, models.BroadcastStatusSent, records.records[0].Status)
}

func TestSendBroadcast_GatewayFailureLeavesRecordPending(t *testing.T) {
	tokens := newFakeTokenDirectory(
		models.DeviceToken{UserID: "u1", Token: "ExponentPushToken[aaa]", Role: models.RoleCustomer},
	)
	records := &fakeBroadcastRecorder{}
	sender := &fakePushSender{batchErr: errors.New("gateway unreachable")}
	svc := NewBroadcastService(tokens, records, sender)

	_, err := svc.SendBroadcast(context.Background(), "Sale", "Everything half off", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway unreachable")

	require.Len(t, records.records, 1)
	assert.Equal(t, models.BroadcastStatusPending, records.records[0].Status)
}

func TestSendBroadcast_RecordCreateFailureAborts(t *testing.T) {
	tokens := newFakeTokenDirectory(
		models.DeviceToken{UserID: "u1", Token: "ExponentPushToken[aaa]", Role: models.RoleCustomer},
	)
	records := &fakeBroadcastRecorder{createErr: errors.New("db down")}
	sender := &fakePushSender{}
	svc := NewBroadcastService(tokens, records, sender)

	_, err := svc.SendBroadcast(context.Background(), "Sale", "Everything half off", nil)
	require.Error(t, err)
	assert.Empty(t, sender.batches)
}

func TestSendBroadcast_SkipsRowsWithoutToken(t *testing.T) {
	tokens := newFakeTokenDirectory(
		models.DeviceToken{UserID: "u1", Token: "ExponentPushToken[aaa]", Role: models.RoleCustomer},
		models.DeviceToken{UserID: "u2", Token: "", Role: models.RoleCustomer},
	)
	records := &fakeBroadcastRecorder{}
	sender := &fakePushSender{}
	svc := NewBroadcastService(tokens, records, sender)

	result, err := svc.SendBroadcast(context.Background(), "Sale", "Everything half off", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

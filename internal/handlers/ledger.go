package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"shoplink-push/internal/ledger"

	"github.com/gin-gonic/gin"
)

const maxSnapshotBytes = 256 << 10 // 256 KB

// LedgerHandler backs up the caller's local notification list so a
// reinstall or a second device can restore it. The server treats the
// snapshot as an opaque JSON blob; the list logic lives on the client.
type LedgerHandler struct {
	storage ledger.Storage
}

func NewLedgerHandler(storage ledger.Storage) *LedgerHandler {
	return &LedgerHandler{storage: storage}
}

// GetSnapshot returns the caller's stored snapshot, or an empty list when
// none exists yet
func (h *LedgerHandler) GetSnapshot(c *gin.Context) {
	key := ledger.StorageKey(c.GetString("user_email"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := h.storage.Load(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error loading ledger snapshot",
			"details": err.Error(),
		})
		return
	}
	if len(data) == 0 {
		data = []byte("[]")
	}

	c.Data(http.StatusOK, "application/json", data)
}

// PutSnapshot replaces the caller's stored snapshot with the request body
func (h *LedgerHandler) PutSnapshot(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Error reading request body",
		})
		return
	}
	if len(data) > maxSnapshotBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "Snapshot too large",
		})
		return
	}

	key := ledger.StorageKey(c.GetString("user_email"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.storage.Save(ctx, key, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error saving ledger snapshot",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Snapshot saved",
	})
}

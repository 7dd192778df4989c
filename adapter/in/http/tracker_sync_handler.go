package http

import (
	"tracker_server/core/service/sync"
	"tracker_server/infra/middleware"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
	"tracker_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler triggers mailbox synchronization for the authenticated user.
type SyncHandler struct {
	syncService *sync.Service
}

func NewSyncHandler(syncService *sync.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) Register(router fiber.Router) {
	router.Post("/sync", h.Sync)
}

// Sync runs a full fetch-classify-persist pass over the user's mailbox.
// POST /api/v1/sync
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperr.Unauthorized("")
	}

	result, err := h.syncService.Run(c.Context(), userID)
	if err != nil {
		return err
	}

	logger.WithFields(map[string]any{
		"user_id": userID,
		"created": result.Created,
		"checked": result.Checked,
	}).Info("Sync completed")

	return response.OK(c, result)
}

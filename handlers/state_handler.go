package handlers

import (
	"journal-desk/helper"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

// StateHandler exposes the caller's loading/error map and toasts.
type StateHandler struct {
	deskHandler
}

func NewStateHandler(desks *services.DeskRegistry, authService services.AuthService) *StateHandler {
	return &StateHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *StateHandler) GetState(c *gin.Context) {
	d := h.desk(c)
	h.Helper.SendSuccess(c, "State loaded", map[string]interface{}{
		"operations":    d.UI.Snapshot(),
		"articlesStale": d.Articles.Stale(),
		"pagination":    d.Articles.Pagination(),
		"notifications": d.Notices.Snapshot(),
	})
}

// GetNotifications hands out the queued toasts once.
func (h *StateHandler) GetNotifications(c *gin.Context) {
	h.Helper.SendSuccess(c, "Notifications loaded", h.desk(c).Notices.Drain())
}

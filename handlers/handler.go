package handlers

import (
	"errors"
	"log"

	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

// deskHandler is embedded by every handler that works on the caller's desk.
type deskHandler struct {
	desks  *services.DeskRegistry
	auth   services.AuthService
	Helper *helper.HTTPHelper
}

func owner(c *gin.Context) string {
	v, _ := c.Get("user_id")
	id, _ := v.(string)
	return id
}

func (h *deskHandler) desk(c *gin.Context) *services.Desk {
	return h.desks.For(owner(c))
}

// fail reports err to the caller. A rejected backend session drops the
// caller's desk and sends them to the login page.
func (h *deskHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, models.ErrUnauthorized) {
		log.Printf("[Desk] backend rejected session of %s", owner(c))
		h.auth.Forget(owner(c))
		h.Helper.SendUnauthorizedError(c, "Your session has expired, please log in again")
		return
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		h.Helper.SendValidationError(c, verr.Fields)
		return
	}
	h.Helper.SendErrorFor(c, err, h.Helper.EmptyJsonMap())
}

// bind reports a malformed body as a bad request.
func (h *deskHandler) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request: "+err.Error(), h.Helper.EmptyJsonMap())
		return false
	}
	return true
}

func (h *deskHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query: "+err.Error(), h.Helper.EmptyJsonMap())
		return false
	}
	return true
}

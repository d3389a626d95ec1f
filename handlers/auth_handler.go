package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	deskHandler
}

func NewAuthHandler(authService services.AuthService, desks *services.DeskRegistry) *AuthHandler {
	return &AuthHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	response, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		message := "Invalid credentials"
		if h.Helper.GetStatusCode(err) >= 500 {
			message = "Login is unavailable, please try again later"
		}
		h.Helper.SendError(c, message, h.Helper.EmptyJsonMap(), 401, `unAuthorized`)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}

// Logout drops the caller's desk even when the backend call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), owner(c)); err != nil {
		h.Helper.SendSuccess(c, "Logged out locally", map[string]interface{}{"redirect": helper.LoginPath})
		return
	}
	h.Helper.SendSuccess(c, "Logout success", map[string]interface{}{"redirect": helper.LoginPath})
}

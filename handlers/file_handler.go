package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	deskHandler
}

func NewFileHandler(desks *services.DeskRegistry, authService services.AuthService) *FileHandler {
	return &FileHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *FileHandler) GetFiles(c *gin.Context) {
	var params models.FileListParams
	if !h.bindQuery(c, &params) {
		return
	}

	files, err := h.desk(c).Files.List(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Files loaded", files)
}

func (h *FileHandler) SetActive(c *gin.Context) {
	var req models.FileStatusRequest
	if !h.bind(c, &req) {
		return
	}

	file, err := h.desk(c).Files.SetActive(c.Request.Context(), c.Param("id"), req.IsActive)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "File status updated", file)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.desk(c).Files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "File deleted successfully", h.Helper.EmptyJsonMap())
}

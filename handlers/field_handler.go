package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type FieldHandler struct {
	deskHandler
}

func NewFieldHandler(desks *services.DeskRegistry, authService services.AuthService) *FieldHandler {
	return &FieldHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *FieldHandler) GetFields(c *gin.Context) {
	var params models.FieldListParams
	if !h.bindQuery(c, &params) {
		return
	}

	fields, err := h.desk(c).Fields.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Fields loaded", fields)
}

func (h *FieldHandler) GetField(c *gin.Context) {
	field, err := h.desk(c).Fields.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Field loaded", field)
}

func (h *FieldHandler) CreateField(c *gin.Context) {
	var in models.FieldInput
	if !h.bind(c, &in) {
		return
	}

	field, err := h.desk(c).Fields.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Field created successfully", field)
}

func (h *FieldHandler) UpdateField(c *gin.Context) {
	var in models.FieldInput
	if !h.bind(c, &in) {
		return
	}

	field, err := h.desk(c).Fields.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Field updated successfully", field)
}

func (h *FieldHandler) ToggleStatus(c *gin.Context) {
	field, err := h.desk(c).Fields.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Field status updated", field)
}

func (h *FieldHandler) DeleteField(c *gin.Context) {
	if err := h.desk(c).Fields.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Field deleted successfully", h.Helper.EmptyJsonMap())
}

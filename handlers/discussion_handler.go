package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	deskHandler
}

func NewDiscussionHandler(desks *services.DeskRegistry, authService services.AuthService) *DiscussionHandler {
	return &DiscussionHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *DiscussionHandler) GetArticleDiscussions(c *gin.Context) {
	discussions, err := h.desk(c).Discussions.ListByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Discussions loaded", discussions)
}

func (h *DiscussionHandler) GetDiscussion(c *gin.Context) {
	discussion, err := h.desk(c).Discussions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Discussion loaded", discussion)
}

func (h *DiscussionHandler) CreateDiscussion(c *gin.Context) {
	var in models.DiscussionInput
	if !h.bind(c, &in) {
		return
	}

	discussion, err := h.desk(c).Discussions.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Discussion created", discussion)
}

func (h *DiscussionHandler) UpdateDiscussion(c *gin.Context) {
	var in models.DiscussionInput
	if !h.bind(c, &in) {
		return
	}

	discussion, err := h.desk(c).Discussions.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Discussion updated", discussion)
}

func (h *DiscussionHandler) AddMessage(c *gin.Context) {
	var req models.DiscussionMessageRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Content == "" {
		h.Helper.SendBadRequest(c, "Message content is required", h.Helper.EmptyJsonMap())
		return
	}

	discussion, err := h.desk(c).Discussions.AddMessage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Message added", discussion)
}

func (h *DiscussionHandler) MarkRead(c *gin.Context) {
	discussion, err := h.desk(c).Discussions.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Messages marked as read", discussion)
}

func (h *DiscussionHandler) AddParticipant(c *gin.Context) {
	var req models.ParticipantRequest
	if !h.bind(c, &req) {
		return
	}

	discussion, err := h.desk(c).Discussions.AddParticipant(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Participant added", discussion)
}

func (h *DiscussionHandler) RemoveParticipant(c *gin.Context) {
	discussion, err := h.desk(c).Discussions.RemoveParticipant(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Participant removed", discussion)
}

func (h *DiscussionHandler) DeleteDiscussion(c *gin.Context) {
	if err := h.desk(c).Discussions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Discussion deleted", h.Helper.EmptyJsonMap())
}

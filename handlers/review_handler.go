package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	deskHandler
}

func NewReviewHandler(desks *services.DeskRegistry, authService services.AuthService) *ReviewHandler {
	return &ReviewHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *ReviewHandler) GetReviews(c *gin.Context) {
	var params models.ReviewListParams
	if !h.bindQuery(c, &params) {
		return
	}

	reviews, err := h.desk(c).Reviews.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Reviews loaded", reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.desk(c).Reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review loaded", review)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var in models.ReviewInput
	if !h.bind(c, &in) {
		return
	}

	review, err := h.desk(c).Reviews.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review invitation sent", review)
}

func (h *ReviewHandler) InviteReviewers(c *gin.Context) {
	var req models.MultipleReviewRequest
	if !h.bind(c, &req) {
		return
	}
	if len(req.Reviewers) == 0 {
		h.Helper.SendBadRequest(c, "At least one reviewer is required", h.Helper.EmptyJsonMap())
		return
	}

	reviews, err := h.desk(c).Reviews.Invite(c.Request.Context(), req.ArticleID, req.Reviewers)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review invitations sent", reviews)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var in models.ReviewInput
	if !h.bind(c, &in) {
		return
	}

	review, err := h.desk(c).Reviews.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review updated", review)
}

func (h *ReviewHandler) AcceptReview(c *gin.Context) {
	review, err := h.desk(c).Reviews.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review accepted", review)
}

func (h *ReviewHandler) DeclineReview(c *gin.Context) {
	var req models.DeclineReviewRequest
	if !h.bind(c, &req) {
		return
	}

	review, err := h.desk(c).Reviews.Decline(c.Request.Context(), c.Param("id"), req.DeclineReason)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review declined", review)
}

func (h *ReviewHandler) CompleteReview(c *gin.Context) {
	var req models.CompleteReviewRequest
	if !h.bind(c, &req) {
		return
	}

	review, err := h.desk(c).Reviews.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review completed", review)
}

func (h *ReviewHandler) SendReminder(c *gin.Context) {
	if err := h.desk(c).Reviews.SendReminder(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Reminder sent", h.Helper.EmptyJsonMap())
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.desk(c).Reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review deleted", h.Helper.EmptyJsonMap())
}

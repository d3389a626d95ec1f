package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	deskHandler
}

func NewIssueHandler(desks *services.DeskRegistry, authService services.AuthService) *IssueHandler {
	return &IssueHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *IssueHandler) GetIssues(c *gin.Context) {
	issues, err := h.desk(c).Issues.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issues loaded", issues)
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	issue, err := h.desk(c).Issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue loaded", issue)
}

func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var in models.IssueInput
	if !h.bind(c, &in) {
		return
	}

	issue, err := h.desk(c).Issues.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue created successfully", issue)
}

func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	var in models.IssueInput
	if !h.bind(c, &in) {
		return
	}

	issue, err := h.desk(c).Issues.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue updated successfully", issue)
}

func (h *IssueHandler) PublishIssue(c *gin.Context) {
	issue, err := h.desk(c).Issues.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue published successfully", issue)
}

func (h *IssueHandler) AddArticle(c *gin.Context) {
	var req models.IssueArticleRequest
	if !h.bind(c, &req) {
		return
	}

	issue, err := h.desk(c).Issues.AddArticle(c.Request.Context(), c.Param("id"), req.ArticleID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article added to issue", issue)
}

func (h *IssueHandler) RemoveArticle(c *gin.Context) {
	var req models.IssueArticleRequest
	if !h.bind(c, &req) {
		return
	}

	issue, err := h.desk(c).Issues.RemoveArticle(c.Request.Context(), c.Param("id"), req.ArticleID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article removed from issue", issue)
}

func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	if err := h.desk(c).Issues.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue deleted successfully", h.Helper.EmptyJsonMap())
}

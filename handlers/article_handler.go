package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	deskHandler
}

func NewArticleHandler(desks *services.DeskRegistry, authService services.AuthService) *ArticleHandler {
	return &ArticleHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if !h.bindQuery(c, &params) {
		return
	}

	articles, page, err := h.desk(c).Articles.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", map[string]interface{}{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, page),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.desk(c).Articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

func (h *ArticleHandler) GetStats(c *gin.Context) {
	stats, err := h.desk(c).Articles.FetchStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Stats loaded", stats)
}

// GetTransitions lists the statuses an editor may move the article to.
func (h *ArticleHandler) GetTransitions(c *gin.Context) {
	article, err := h.desk(c).Articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Transitions loaded", map[string]interface{}{
		"status": article.Status,
		"next":   models.NextStatuses(article.Status),
	})
}

func (h *ArticleHandler) ChangeStatus(c *gin.Context) {
	var req models.ChangeStatusRequest
	if !h.bind(c, &req) {
		return
	}
	status := models.NormalizeStatus(string(req.Status))
	if !status.Valid() {
		h.Helper.SendBadRequest(c, "Unknown status "+string(req.Status), h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.desk(c).Articles.ChangeStatus(c.Request.Context(), c.Param("id"), status, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Status updated", article)
}

func (h *ArticleHandler) AssignEditor(c *gin.Context) {
	var req models.AssignEditorRequest
	if !h.bind(c, &req) {
		return
	}

	article, err := h.desk(c).Articles.AssignEditor(c.Request.Context(), c.Param("id"), req.EditorID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Editor assigned", article)
}

func (h *ArticleHandler) Publish(c *gin.Context) {
	var req models.PublishRequest
	if !h.bind(c, &req) {
		return
	}

	article, err := h.desk(c).Articles.Publish(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article published", article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	if err := h.desk(c).Articles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted successfully", h.Helper.EmptyJsonMap())
}

package handlers

import (
	"journal-desk/helper"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	deskHandler
}

func NewAuthorHandler(desks *services.DeskRegistry, authService services.AuthService) *AuthorHandler {
	return &AuthorHandler{deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}}}
}

func (h *AuthorHandler) GetAuthors(c *gin.Context) {
	var params models.AuthorListParams
	if !h.bindQuery(c, &params) {
		return
	}

	authors, err := h.desk(c).Authors.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Authors loaded", authors)
}

func (h *AuthorHandler) GetArticleAuthors(c *gin.Context) {
	authors, err := h.desk(c).Authors.ListByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Authors loaded", authors)
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	author, err := h.desk(c).Authors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Author loaded", author)
}

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var in models.AuthorInput
	if !h.bind(c, &in) {
		return
	}

	author, err := h.desk(c).Authors.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Author added successfully", author)
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	var in models.AuthorInput
	if !h.bind(c, &in) {
		return
	}

	author, err := h.desk(c).Authors.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Author updated successfully", author)
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	if err := h.desk(c).Authors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Author removed successfully", h.Helper.EmptyJsonMap())
}

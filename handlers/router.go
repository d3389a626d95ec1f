package handlers

import (
	"net/http"

	"journal-desk/middleware"
	"journal-desk/models"
	"journal-desk/services"

	"github.com/gin-gonic/gin"
)

// RouterDeps are the services the desk routes are served from.
type RouterDeps struct {
	Auth     services.AuthService
	Desks    *services.DeskRegistry
	Sessions *services.SessionManager
	Accounts services.AccountDirectory
}

// NewRouter builds the desk API. Everything under /desk requires a token
// issued by the journal backend.
func NewRouter(router *gin.Engine, deps RouterDeps) *gin.Engine {
	authHandler := NewAuthHandler(deps.Auth, deps.Desks)
	articleHandler := NewArticleHandler(deps.Desks, deps.Auth)
	fileHandler := NewFileHandler(deps.Desks, deps.Auth)
	authorHandler := NewAuthorHandler(deps.Desks, deps.Auth)
	fieldHandler := NewFieldHandler(deps.Desks, deps.Auth)
	issueHandler := NewIssueHandler(deps.Desks, deps.Auth)
	reviewHandler := NewReviewHandler(deps.Desks, deps.Auth)
	discussionHandler := NewDiscussionHandler(deps.Desks, deps.Auth)
	sessionHandler := NewSessionHandler(deps.Desks, deps.Auth, deps.Sessions, deps.Accounts)
	stateHandler := NewStateHandler(deps.Desks, deps.Auth)

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/auth/login", authHandler.Login)

	desk := router.Group("/desk")
	desk.Use(middleware.AuthMiddleware())
	{
		desk.GET("/profile", authHandler.GetProfile)
		desk.POST("/logout", authHandler.Logout)
		desk.GET("/state", stateHandler.GetState)
		desk.GET("/notifications", stateHandler.GetNotifications)

		sessions := desk.Group("/sessions")
		{
			sessions.POST("", sessionHandler.OpenSession)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.DELETE("/:id", sessionHandler.CloseSession)
			sessions.PATCH("/:id/form", sessionHandler.PatchForm)
			sessions.PUT("/:id/stage", sessionHandler.SetStage)
			sessions.PUT("/:id/fields", sessionHandler.SetFields)
			sessions.POST("/:id/authors", sessionHandler.AddAuthor)
			sessions.DELETE("/:id/authors/:index", sessionHandler.RemoveAuthor)
			sessions.POST("/:id/files/:kind", middleware.LimitBody(services.MaxUploadBody), sessionHandler.StageFile)
			sessions.DELETE("/:id/files/:kind", sessionHandler.RemoveFile)
			sessions.POST("/:id/draft", sessionHandler.SaveDraft)
			sessions.DELETE("/:id/draft", sessionHandler.ClearDraft)
			sessions.POST("/:id/submit", sessionHandler.Submit)
			sessions.POST("/:id/retry", sessionHandler.RetryRegistration)
		}
		desk.GET("/drafts", sessionHandler.GetDrafts)

		editors := middleware.RequireRole(models.RoleEditor, models.RoleAdmin)

		articles := desk.Group("/articles")
		{
			articles.GET("", articleHandler.GetArticles)
			articles.GET("/stats", articleHandler.GetStats)
			articles.GET("/:id", articleHandler.GetArticle)
			articles.GET("/:id/transitions", articleHandler.GetTransitions)
			articles.PATCH("/:id/status", editors, articleHandler.ChangeStatus)
			articles.PUT("/:id/publish", editors, articleHandler.Publish)
			articles.PUT("/:id/assign-editor", editors, articleHandler.AssignEditor)
			articles.DELETE("/:id", editors, articleHandler.DeleteArticle)
			articles.GET("/:id/files", fileHandler.GetFiles)
			articles.GET("/:id/authors", authorHandler.GetArticleAuthors)
			articles.GET("/:id/discussions", discussionHandler.GetArticleDiscussions)
		}

		files := desk.Group("/files")
		{
			files.PUT("/:id/status", fileHandler.SetActive)
			files.DELETE("/:id", fileHandler.DeleteFile)
		}

		authors := desk.Group("/authors")
		{
			authors.GET("", authorHandler.GetAuthors)
			authors.GET("/:id", authorHandler.GetAuthor)
			authors.POST("", authorHandler.CreateAuthor)
			authors.PUT("/:id", authorHandler.UpdateAuthor)
			authors.DELETE("/:id", authorHandler.DeleteAuthor)
		}

		fields := desk.Group("/fields")
		{
			fields.GET("", fieldHandler.GetFields)
			fields.GET("/:id", fieldHandler.GetField)
			fields.POST("", editors, fieldHandler.CreateField)
			fields.PUT("/:id", editors, fieldHandler.UpdateField)
			fields.PATCH("/:id/toggle-status", editors, fieldHandler.ToggleStatus)
			fields.DELETE("/:id", editors, fieldHandler.DeleteField)
		}

		issues := desk.Group("/issues")
		{
			issues.GET("", issueHandler.GetIssues)
			issues.GET("/:id", issueHandler.GetIssue)
			issues.POST("", editors, issueHandler.CreateIssue)
			issues.PUT("/:id", editors, issueHandler.UpdateIssue)
			issues.PUT("/:id/publish", editors, issueHandler.PublishIssue)
			issues.PUT("/:id/add-article", editors, issueHandler.AddArticle)
			issues.PUT("/:id/remove-article", editors, issueHandler.RemoveArticle)
			issues.DELETE("/:id", editors, issueHandler.DeleteIssue)
		}

		reviews := desk.Group("/reviews")
		{
			reviews.GET("", reviewHandler.GetReviews)
			reviews.GET("/:id", reviewHandler.GetReview)
			reviews.POST("", editors, reviewHandler.CreateReview)
			reviews.POST("/multiple", editors, reviewHandler.InviteReviewers)
			reviews.PUT("/:id", editors, reviewHandler.UpdateReview)
			reviews.DELETE("/:id", editors, reviewHandler.DeleteReview)
			reviews.POST("/:id/reminder", editors, reviewHandler.SendReminder)
			reviews.PUT("/:id/accept", reviewHandler.AcceptReview)
			reviews.PUT("/:id/decline", reviewHandler.DeclineReview)
			reviews.PUT("/:id/complete", reviewHandler.CompleteReview)
		}

		discussions := desk.Group("/discussions")
		{
			discussions.GET("/:id", discussionHandler.GetDiscussion)
			discussions.POST("", discussionHandler.CreateDiscussion)
			discussions.PUT("/:id", discussionHandler.UpdateDiscussion)
			discussions.DELETE("/:id", discussionHandler.DeleteDiscussion)
			discussions.POST("/:id/messages", discussionHandler.AddMessage)
			discussions.PUT("/:id/mark-read", discussionHandler.MarkRead)
			discussions.PUT("/:id/participants", discussionHandler.AddParticipant)
			discussions.DELETE("/:id/participants/:userId", discussionHandler.RemoveParticipant)
		}
	}

	return router
}

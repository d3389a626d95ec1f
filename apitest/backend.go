// Package apitest runs an in-memory journal backend for tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"journal-desk/client"
	"journal-desk/models"

	"github.com/gin-gonic/gin"
)

// Failure is a canned error reply for a route.
type Failure struct {
	Status  int
	Message string
}

// Gate holds the next request to a route until released.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
}

// Arrived is closed once the held request reached the backend.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

func (g *Gate) Release() { close(g.release) }

// Backend serves the journal REST API under /api from memory.
type Backend struct {
	Server *httptest.Server

	mu          sync.Mutex
	seq         int
	now         time.Time
	articles    map[string]*models.Article
	files       map[string]*models.ArticleFile
	authors     map[string]*models.ArticleAuthor
	fields      map[string]*models.Field
	issues      map[string]*models.Issue
	reviews     map[string]*models.Review
	discussions map[string]*models.Discussion
	accounts    map[string]bool
	users       map[string]models.User
	tokens      map[string]string
	calls       map[string]int
	authHeaders []string
	failures    map[string]Failure
	gates       map[string]*Gate
}

// New starts a backend that is closed with the test.
func New(t testing.TB) *Backend {
	gin.SetMode(gin.TestMode)
	b := &Backend{
		now:         time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		articles:    map[string]*models.Article{},
		files:       map[string]*models.ArticleFile{},
		authors:     map[string]*models.ArticleAuthor{},
		fields:      map[string]*models.Field{},
		issues:      map[string]*models.Issue{},
		reviews:     map[string]*models.Review{},
		discussions: map[string]*models.Discussion{},
		accounts:    map[string]bool{},
		users:       map[string]models.User{},
		tokens:      map[string]string{},
		calls:       map[string]int{},
		failures:    map[string]Failure{},
		gates:       map[string]*Gate{},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL for client.New.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Client returns a client bound to the backend.
func (b *Backend) Client(opts ...client.Option) *client.Client {
	return client.New(b.URL(), opts...)
}

func routeKey(method, route string) string {
	return method + " /api" + route
}

// Fail makes every request to route answer with status until Recover.
// Routes use gin patterns relative to /api, e.g. "/articles/:id".
func (b *Backend) Fail(method, route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[routeKey(method, route)] = Failure{Status: status, Message: message}
}

func (b *Backend) Recover(method, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, routeKey(method, route))
}

// Hold returns a gate that parks the next request to route.
func (b *Backend) Hold(method, route string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gates[routeKey(method, route)] = g
	return g
}

// Calls counts requests received for route.
func (b *Backend) Calls(method, route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[routeKey(method, route)]
}

// TotalCalls counts every request received.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// AddAccount registers an email as belonging to a user.
func (b *Backend) AddAccount(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[strings.ToLower(email)] = true
}

// IssueToken makes check-auth accept token for the user with userID, in
// addition to the "token-<id>" tokens login hands out.
func (b *Backend) IssueToken(token, userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = userID
}

// AddUser registers a login. The password is not checked.
func (b *Backend) AddUser(u models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[strings.ToLower(u.Email)] = u
	b.accounts[strings.ToLower(u.Email)] = true
}

// SeedArticle stores a, assigning an id when empty, and returns the id.
func (b *Backend) SeedArticle(a models.Article) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == "" {
		a.ID = b.nextID("art")
	}
	if a.Status == "" {
		a.Status = models.StatusSubmitted
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = b.tick()
		a.UpdatedAt = a.CreatedAt
	}
	b.articles[a.ID] = &a
	return a.ID
}

func (b *Backend) SeedField(f models.Field) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f.ID == "" {
		f.ID = b.nextID("field")
	}
	b.fields[f.ID] = &f
	return f.ID
}

func (b *Backend) SeedIssue(i models.Issue) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i.ID == "" {
		i.ID = b.nextID("issue")
	}
	b.issues[i.ID] = &i
	return i.ID
}

func (b *Backend) SeedFile(f models.ArticleFile) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f.ID == "" {
		f.ID = b.nextID("file")
	}
	b.files[f.ID] = &f
	return f.ID
}

func (b *Backend) SeedDiscussion(d models.Discussion) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d.ID == "" {
		d.ID = b.nextID("disc")
	}
	b.discussions[d.ID] = &d
	return d.ID
}

func (b *Backend) Article(id string) (models.Article, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.articles[id]
	if !ok {
		return models.Article{}, false
	}
	return *a, true
}

func (b *Backend) ArticleCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.articles)
}

// FilesOf lists stored files of an article.
func (b *Backend) FilesOf(articleID string) []models.ArticleFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.ArticleFile
	for _, f := range b.files {
		if f.ArticleID == articleID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LastAuthorization is the Authorization header of the latest request.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.authHeaders); n > 0 {
		return b.authHeaders[n-1]
	}
	return ""
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

// tick advances the backend clock one second per write.
func (b *Backend) tick() time.Time {
	b.now = b.now.Add(time.Second)
	return b.now
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// intercept records the call and applies failures and gates.
func (b *Backend) intercept(c *gin.Context) {
	key := c.Request.Method + " " + c.FullPath()

	b.mu.Lock()
	b.calls[key]++
	b.authHeaders = append(b.authHeaders, c.GetHeader("Authorization"))
	f, failing := b.failures[key]
	g := b.gates[key]
	delete(b.gates, key)
	b.mu.Unlock()

	if g != nil {
		close(g.arrived)
		<-g.release
	}
	if failing {
		fail(c, f.Status, f.Message)
		return
	}
	c.Next()
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api", b.intercept)

	auth := api.Group("/auth")
	auth.POST("/login", b.login)
	auth.GET("/check-auth", b.checkAuth)
	auth.POST("/logout", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"}) })
	auth.POST("/check-email", b.checkEmail)

	articles := api.Group("/articles")
	articles.GET("", b.listArticles)
	articles.GET("/stats", b.articleStats)
	articles.GET("/:id", b.getArticle)
	articles.POST("", b.createArticle)
	articles.PUT("/:id/update", b.updateArticle)
	articles.DELETE("/:id", b.deleteArticle)
	articles.PATCH("/:id/status", b.changeStatus)
	articles.PUT("/:id/assign-editor", b.assignEditor)
	articles.PUT("/:id/publish", b.publishArticle)
	articles.PUT("/:id/thumbnail", b.setThumbnail)

	files := api.Group("/article-files")
	files.GET("/:id", b.listFiles)
	files.POST("/:id/upload", b.registerFile)
	files.PUT("/:id/status", b.setFileStatus)
	files.DELETE("/:id", b.deleteFile)

	authors := api.Group("/article-authors")
	authors.GET("", b.listAuthors)
	authors.GET("/:id/authors", b.articleAuthors)
	authors.GET("/:id", b.getAuthor)
	authors.POST("", b.createAuthor)
	authors.PUT("/:id", b.updateAuthor)
	authors.DELETE("/:id", b.deleteAuthor)

	fields := api.Group("/fields")
	fields.GET("", b.listFields)
	fields.GET("/:id", b.getField)
	fields.POST("", b.createField)
	fields.PUT("/:id", b.updateField)
	fields.DELETE("/:id", b.deleteField)
	fields.PATCH("/:id/toggle-status", b.toggleField)

	issues := api.Group("/issues")
	issues.GET("", b.listIssues)
	issues.GET("/:id", b.getIssue)
	issues.POST("", b.createIssue)
	issues.PUT("/:id", b.updateIssue)
	issues.DELETE("/:id", b.deleteIssue)
	issues.PUT("/:id/publish", b.publishIssue)
	issues.PUT("/:id/add-article", b.addIssueArticle)
	issues.PUT("/:id/remove-article", b.removeIssueArticle)

	reviews := api.Group("/reviews")
	reviews.GET("", b.listReviews)
	reviews.GET("/:id", b.getReview)
	reviews.POST("", b.createReview)
	reviews.POST("/multiple", b.inviteReviewers)
	reviews.PUT("/:id", b.updateReview)
	reviews.DELETE("/:id", b.deleteReview)
	reviews.PUT("/:id/accept", b.reviewAction(models.ReviewAccepted))
	reviews.PUT("/:id/decline", b.declineReview)
	reviews.PUT("/:id/complete", b.completeReview)
	reviews.POST("/:id/reminder", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reminder sent"}) })

	discussions := api.Group("/discussions")
	discussions.GET("/article/:articleId", b.articleDiscussions)
	discussions.GET("/:id", b.getDiscussion)
	discussions.POST("", b.createDiscussion)
	discussions.PUT("/:id", b.updateDiscussion)
	discussions.DELETE("/:id", b.deleteDiscussion)
	discussions.POST("/:id/messages", b.addMessage)
	discussions.PUT("/:id/mark-read", b.markRead)
	discussions.PUT("/:id/participants", b.addParticipant)
	discussions.DELETE("/:id/participants/:userId", b.removeParticipant)

	return r
}

func (b *Backend) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	u, found := b.users[strings.ToLower(req.Email)]
	b.mu.Unlock()
	if !found {
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "token": "token-" + u.ID})
}

func (b *Backend) checkAuth(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if token == "token-"+u.ID || b.tokens[token] == u.ID {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
			return
		}
	}
	fail(c, http.StatusUnauthorized, "Unauthorized - no token provided")
}

func (b *Backend) checkEmail(c *gin.Context) {
	var req models.CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	exists := b.accounts[strings.ToLower(req.Email)]
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": exists})
}

func (b *Backend) listArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if params.Limit <= 0 {
		params.Limit = 10
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	b.mu.Lock()
	var matched []models.Article
	for _, a := range b.articles {
		if params.Status != "" && a.Status != params.Status {
			continue
		}
		if params.Field != "" && models.RefID(a.Field) != params.Field {
			continue
		}
		if params.SubmitterID != "" && models.RefID(a.SubmitterID) != params.SubmitterID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(params.Search)) {
			continue
		}
		matched = append(matched, *a)
	}
	b.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	start := min((params.Page-1)*params.Limit, total)
	end := min(start+params.Limit, total)
	pages := (total + params.Limit - 1) / params.Limit

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       matched[start:end],
		"pagination": models.Pagination{Page: params.Page, Limit: params.Limit, Total: total, Pages: pages},
	})
}

func (b *Backend) articleStats(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := models.ArticleStats{"total": len(b.articles)}
	for _, a := range b.articles {
		stats[string(a.Status)]++
	}
	ok(c, http.StatusOK, stats)
}

// withArticle runs fn on the stored article under the lock.
func (b *Backend) withArticle(c *gin.Context, fn func(a *models.Article) int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, found := b.articles[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	status := fn(a)
	if status >= 400 {
		return
	}
	ok(c, status, *a)
}

func (b *Backend) getArticle(c *gin.Context) {
	b.withArticle(c, func(a *models.Article) int { return http.StatusOK })
}

func (b *Backend) createArticle(c *gin.Context) {
	var in models.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		fail(c, http.StatusBadRequest, "Title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	a := models.Article{ID: b.nextID("art"), CreatedAt: now}
	applyInput(&a, in)
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	a.StatusHistory = []models.StatusHistory{{ID: b.nextID("hist"), Status: a.Status, Timestamp: now}}
	a.UpdatedAt = now
	b.articles[a.ID] = &a
	ok(c, http.StatusCreated, a)
}

func applyInput(a *models.Article, in models.ArticleInput) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&a.TitlePrefix, in.TitlePrefix)
	set(&a.Title, in.Title)
	set(&a.Subtitle, in.Subtitle)
	set(&a.Thumbnail, in.Thumbnail)
	set(&a.Abstract, in.Abstract)
	set(&a.ArticleLanguage, in.ArticleLanguage)
	set(&a.OtherLanguage, in.OtherLanguage)
	set(&a.SubmitterNote, in.SubmitterNote)
	if in.Keywords != nil {
		a.Keywords = in.Keywords
	}
	if in.Authors != nil {
		a.Authors = in.Authors
	}
	if in.Field != "" {
		a.Field = models.RefTo(in.Field)
	}
	if in.SecondaryFields != nil {
		a.SecondaryFields = nil
		for _, id := range in.SecondaryFields {
			a.SecondaryFields = append(a.SecondaryFields, models.Ref{ID: id})
		}
	}
	if in.Status != "" {
		a.Status = in.Status
	}
}

func (b *Backend) updateArticle(c *gin.Context) {
	var in models.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withArticle(c, func(a *models.Article) int {
		in.Status = ""
		applyInput(a, in)
		a.UpdatedAt = b.tick()
		return http.StatusOK
	})
}

func (b *Backend) deleteArticle(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	if _, found := b.articles[id]; !found {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	delete(b.articles, id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article deleted"})
}

func (b *Backend) changeStatus(c *gin.Context) {
	var req models.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withArticle(c, func(a *models.Article) int {
		now := b.tick()
		a.Status = req.Status
		a.StatusHistory = append(a.StatusHistory, models.StatusHistory{ID: b.nextID("hist"), Status: req.Status, Timestamp: now, Reason: req.Reason})
		a.UpdatedAt = now
		return http.StatusOK
	})
}

func (b *Backend) assignEditor(c *gin.Context) {
	var req models.AssignEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withArticle(c, func(a *models.Article) int {
		a.EditorID = models.RefTo(req.EditorID)
		a.UpdatedAt = b.tick()
		return http.StatusOK
	})
}

func (b *Backend) publishArticle(c *gin.Context) {
	var req models.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withArticle(c, func(a *models.Article) int {
		now := b.tick()
		a.Status = models.StatusPublished
		a.DOI = req.DOI
		a.IssueID = req.IssueID
		a.PageStart = req.PageStart
		a.PageEnd = req.PageEnd
		a.StatusHistory = append(a.StatusHistory, models.StatusHistory{ID: b.nextID("hist"), Status: models.StatusPublished, Timestamp: now})
		a.UpdatedAt = now
		return http.StatusOK
	})
}

func (b *Backend) setThumbnail(c *gin.Context) {
	var req models.ThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withArticle(c, func(a *models.Article) int {
		a.Thumbnail = req.Thumbnail
		a.UpdatedAt = b.tick()
		return http.StatusOK
	})
}

func (b *Backend) listFiles(c *gin.Context) {
	round, _ := strconv.Atoi(c.Query("round"))
	category := models.FileCategory(c.Query("fileCategory"))

	out := []models.ArticleFile{}
	for _, f := range b.FilesOf(c.Param("id")) {
		if round != 0 && f.Round != round {
			continue
		}
		if category != "" && f.FileCategory != category {
			continue
		}
		out = append(out, f)
	}
	ok(c, http.StatusOK, out)
}

// registerFile stores the record as the active file of its category.
func (b *Backend) registerFile(c *gin.Context) {
	var req models.RegisterFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	articleID := c.Param("id")
	if _, found := b.articles[articleID]; !found {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	version := 1
	for _, f := range b.files {
		if f.ArticleID == articleID && f.FileCategory == req.FileCategory {
			f.IsActive = false
			version++
		}
	}
	now := b.tick()
	f := models.ArticleFile{
		ID:           b.nextID("file"),
		ArticleID:    articleID,
		FileCategory: req.FileCategory,
		FileName:     req.FileName,
		OriginalName: req.OriginalName,
		FileSize:     req.FileSize,
		FileType:     req.FileType,
		FileURL:      req.FileURL,
		IsActive:     true,
		Round:        req.Round,
		FileVersion:  version,
		CreatedAt:    &now,
	}
	b.files[f.ID] = &f
	ok(c, http.StatusCreated, f)
}

func (b *Backend) setFileStatus(c *gin.Context) {
	var req models.FileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, found := b.files[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "File not found")
		return
	}
	if req.IsActive {
		for _, other := range b.files {
			if other.ArticleID == f.ArticleID && other.FileCategory == f.FileCategory {
				other.IsActive = false
			}
		}
	}
	f.IsActive = req.IsActive
	ok(c, http.StatusOK, *f)
}

func (b *Backend) deleteFile(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.files[c.Param("id")]; !found {
		fail(c, http.StatusNotFound, "File not found")
		return
	}
	delete(b.files, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) listAuthors(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.ArticleAuthor{}
	for _, a := range b.authors {
		if v := c.Query("hasAccount"); v != "" && strconv.FormatBool(a.HasAccount) != v {
			continue
		}
		if v := c.Query("isCorresponding"); v != "" && strconv.FormatBool(a.IsCorresponding) != v {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	ok(c, http.StatusOK, out)
}

func (b *Backend) articleAuthors(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.ArticleAuthor{}
	for _, a := range b.authors {
		if a.ArticleID == c.Param("id") {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	ok(c, http.StatusOK, out)
}

func (b *Backend) getAuthor(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, found := b.authors[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Author not found")
		return
	}
	ok(c, http.StatusOK, *a)
}

func (b *Backend) createAuthor(c *gin.Context) {
	var a models.ArticleAuthor
	if err := c.ShouldBindJSON(&a); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.nextID("author")
	b.authors[a.ID] = &a
	ok(c, http.StatusCreated, a)
}

func (b *Backend) updateAuthor(c *gin.Context) {
	var in models.ArticleAuthor
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.authors[c.Param("id")]; !found {
		fail(c, http.StatusNotFound, "Author not found")
		return
	}
	in.ID = c.Param("id")
	b.authors[in.ID] = &in
	ok(c, http.StatusOK, in)
}

func (b *Backend) deleteAuthor(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.authors, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) listFields(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Field{}
	for _, f := range b.fields {
		if v := c.Query("isActive"); v != "" && strconv.FormatBool(f.IsActive) != v {
			continue
		}
		if v := c.Query("parent"); v != "" && models.RefID(f.Parent) != v {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	ok(c, http.StatusOK, out)
}

func (b *Backend) getField(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, found := b.fields[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Field not found")
		return
	}
	ok(c, http.StatusOK, *f)
}

func fieldFrom(id string, in models.FieldInput) models.Field {
	f := models.Field{ID: id, Name: in.Name, Code: in.Code, Parent: models.RefTo(in.Parent), Level: in.Level, IsActive: true}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	return f
}

func (b *Backend) createField(c *gin.Context) {
	var in models.FieldInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f := fieldFrom(b.nextID("field"), in)
	b.fields[f.ID] = &f
	ok(c, http.StatusCreated, f)
}

func (b *Backend) updateField(c *gin.Context) {
	var in models.FieldInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.fields[c.Param("id")]; !found {
		fail(c, http.StatusNotFound, "Field not found")
		return
	}
	f := fieldFrom(c.Param("id"), in)
	b.fields[f.ID] = &f
	ok(c, http.StatusOK, f)
}

func (b *Backend) deleteField(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.fields, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) toggleField(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, found := b.fields[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Field not found")
		return
	}
	f.IsActive = !f.IsActive
	ok(c, http.StatusOK, *f)
}

func (b *Backend) listIssues(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Issue{}
	for _, i := range b.issues {
		out = append(out, *i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	ok(c, http.StatusOK, out)
}

func (b *Backend) withIssue(c *gin.Context, fn func(i *models.Issue)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	issue, found := b.issues[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Issue not found")
		return
	}
	fn(issue)
	ok(c, http.StatusOK, *issue)
}

func (b *Backend) getIssue(c *gin.Context) {
	b.withIssue(c, func(*models.Issue) {})
}

func (b *Backend) createIssue(c *gin.Context) {
	var in models.IssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := models.Issue{ID: b.nextID("issue"), Title: in.Title, VolumeNumber: in.VolumeNumber, IssueNumber: in.IssueNumber, PublicationDate: in.PublicationDate, Articles: []models.Ref{}}
	b.issues[i.ID] = &i
	ok(c, http.StatusCreated, i)
}

func (b *Backend) updateIssue(c *gin.Context) {
	var in models.IssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withIssue(c, func(i *models.Issue) {
		i.Title = in.Title
		i.VolumeNumber = in.VolumeNumber
		i.IssueNumber = in.IssueNumber
		i.PublicationDate = in.PublicationDate
	})
}

func (b *Backend) deleteIssue(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, found := b.issues[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Issue not found")
		return
	}
	if i.IsPublished {
		fail(c, http.StatusBadRequest, "Cannot delete published issue")
		return
	}
	delete(b.issues, i.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) publishIssue(c *gin.Context) {
	b.withIssue(c, func(i *models.Issue) {
		now := b.tick()
		i.IsPublished = true
		i.PublicationDate = &now
	})
}

func (b *Backend) addIssueArticle(c *gin.Context) {
	var req models.IssueArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withIssue(c, func(i *models.Issue) {
		if !slices.ContainsFunc(i.Articles, func(r models.Ref) bool { return r.ID == req.ArticleID }) {
			i.Articles = append(i.Articles, models.Ref{ID: req.ArticleID})
		}
	})
}

func (b *Backend) removeIssueArticle(c *gin.Context) {
	var req models.IssueArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withIssue(c, func(i *models.Issue) {
		i.Articles = slices.DeleteFunc(i.Articles, func(r models.Ref) bool { return r.ID == req.ArticleID })
	})
}

func (b *Backend) listReviews(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Review{}
	for _, r := range b.reviews {
		if v := c.Query("articleId"); v != "" && models.RefID(r.ArticleID) != v {
			continue
		}
		if v := c.Query("reviewerId"); v != "" && models.RefID(r.ReviewerID) != v {
			continue
		}
		if v := c.Query("status"); v != "" && string(r.Status) != v {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	ok(c, http.StatusOK, out)
}

func (b *Backend) withReview(c *gin.Context, fn func(r *models.Review)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, found := b.reviews[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Review not found")
		return
	}
	fn(r)
	ok(c, http.StatusOK, *r)
}

func (b *Backend) getReview(c *gin.Context) {
	b.withReview(c, func(*models.Review) {})
}

func (b *Backend) newReview(articleID, reviewerID string, round int) models.Review {
	if round == 0 {
		round = 1
	}
	return models.Review{
		ID:         b.nextID("review"),
		ArticleID:  models.RefTo(articleID),
		ReviewerID: models.RefTo(reviewerID),
		Status:     models.ReviewPending,
		Round:      round,
	}
}

func (b *Backend) createReview(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.newReview(in.ArticleID, in.ReviewerID, in.Round)
	b.reviews[r.ID] = &r
	ok(c, http.StatusCreated, r)
}

func (b *Backend) inviteReviewers(c *gin.Context) {
	var req models.MultipleReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	created := []models.Review{}
	for _, a := range req.Reviewers {
		r := b.newReview(req.ArticleID, a.ReviewerID, 1)
		r.ResponseDeadline = a.ResponseDeadline
		r.ReviewDeadline = a.ReviewDeadline
		b.reviews[r.ID] = &r
		created = append(created, r)
	}
	ok(c, http.StatusCreated, created)
}

func (b *Backend) updateReview(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withReview(c, func(r *models.Review) {
		if in.ResponseDeadline != nil {
			r.ResponseDeadline = in.ResponseDeadline
		}
		if in.ReviewDeadline != nil {
			r.ReviewDeadline = in.ReviewDeadline
		}
	})
}

func (b *Backend) deleteReview(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.reviews, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) reviewAction(status models.ReviewStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.withReview(c, func(r *models.Review) { r.Status = status })
	}
}

func (b *Backend) declineReview(c *gin.Context) {
	var req models.DeclineReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withReview(c, func(r *models.Review) {
		r.Status = models.ReviewDeclined
		r.DeclineReason = req.DeclineReason
	})
}

func (b *Backend) completeReview(c *gin.Context) {
	var req models.CompleteReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withReview(c, func(r *models.Review) {
		now := b.tick()
		r.Status = models.ReviewCompleted
		r.Recommendation = req.Recommendation
		r.CommentsForAuthor = req.CommentsForAuthor
		r.CommentsForEditor = req.CommentsForEditor
		r.CompletedAt = &now
	})
}

func (b *Backend) articleDiscussions(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Discussion{}
	for _, d := range b.discussions {
		if models.RefID(d.ArticleID) == c.Param("articleId") {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	ok(c, http.StatusOK, out)
}

func (b *Backend) withDiscussion(c *gin.Context, fn func(d *models.Discussion)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, found := b.discussions[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Discussion not found")
		return
	}
	fn(d)
	ok(c, http.StatusOK, *d)
}

func (b *Backend) getDiscussion(c *gin.Context) {
	b.withDiscussion(c, func(*models.Discussion) {})
}

func (b *Backend) createDiscussion(c *gin.Context) {
	var in models.DiscussionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	d := models.Discussion{
		ID:        b.nextID("disc"),
		ArticleID: models.RefTo(in.ArticleID),
		Subject:   in.Subject,
		Type:      in.Type,
		Round:     in.Round,
		IsActive:  true,
		Messages:  []models.DiscussionMessage{},
		CreatedAt: &now,
	}
	for _, p := range in.Participants {
		d.Participants = append(d.Participants, models.Ref{ID: p})
	}
	if in.Message != "" {
		d.Messages = append(d.Messages, models.DiscussionMessage{Content: in.Message, Timestamp: now, ReadBy: []models.ReadReceipt{}})
	}
	b.discussions[d.ID] = &d
	ok(c, http.StatusCreated, d)
}

func (b *Backend) updateDiscussion(c *gin.Context) {
	var in models.DiscussionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withDiscussion(c, func(d *models.Discussion) {
		if in.Subject != "" {
			d.Subject = in.Subject
		}
	})
}

func (b *Backend) deleteDiscussion(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.discussions, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) addMessage(c *gin.Context) {
	var req models.DiscussionMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withDiscussion(c, func(d *models.Discussion) {
		d.Messages = append(d.Messages, models.DiscussionMessage{
			Content:     req.Content,
			Attachments: req.Attachments,
			Timestamp:   b.tick(),
			ReadBy:      []models.ReadReceipt{},
		})
	})
}

func (b *Backend) markRead(c *gin.Context) {
	user := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	b.withDiscussion(c, func(d *models.Discussion) {
		now := b.tick()
		for i := range d.Messages {
			d.Messages[i].ReadBy = append(d.Messages[i].ReadBy, models.ReadReceipt{UserID: user, Timestamp: now})
		}
	})
}

func (b *Backend) addParticipant(c *gin.Context) {
	var req models.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.withDiscussion(c, func(d *models.Discussion) {
		d.Participants = append(d.Participants, models.Ref{ID: req.UserID})
	})
}

func (b *Backend) removeParticipant(c *gin.Context) {
	b.withDiscussion(c, func(d *models.Discussion) {
		d.Participants = slices.DeleteFunc(d.Participants, func(r models.Ref) bool { return r.ID == c.Param("userId") })
	})
}

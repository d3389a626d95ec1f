package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"

	"journal-desk/apitest"
	"journal-desk/config"
	"journal-desk/handlers"
	"journal-desk/middleware"
	"journal-desk/models"
	"journal-desk/repositories"
	"journal-desk/services"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

type response struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage string          `json:"code_message"`
	Data        json.RawMessage `json:"data"`
}

type sessionData struct {
	Session struct {
		ID string `json:"id"`
	} `json:"session"`
	Wizard services.WizardView `json:"wizard"`
}

type DeskTestSuite struct {
	suite.Suite
	backend   *apitest.Backend
	uploads   *apitest.Uploader
	desks     *services.DeskRegistry
	autosaver *services.Autosaver
	router    *gin.Engine
	author    string
	editor    string
}

func TestDeskTestSuite(t *testing.T) {
	suite.Run(t, new(DeskTestSuite))
}

func (suite *DeskTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.backend = apitest.New(suite.T())
	suite.uploads = apitest.NewUploader()

	db, err := config.InitDraftDB(config.Config{DraftDriver: "sqlite", DraftDSN: "file::memory:"})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { sqlDB.Close() })
	drafts := services.NewDraftService(repositories.NewDraftRepository(db))

	api := suite.backend.Client()
	validator := services.NewValidator()
	accounts := services.NewEmailDirectory(api, time.Minute)
	suite.desks = services.NewDeskRegistry(services.DeskDeps{
		API:       api,
		Uploader:  suite.uploads,
		Drafts:    drafts,
		Validator: validator,
		Accounts:  accounts,
	})
	suite.autosaver = services.NewAutosaver(drafts, time.Hour)
	sessions := services.NewSessionManager(drafts, suite.autosaver, validator, []string{".pdf", ".zip"})

	suite.router = handlers.NewRouter(gin.New(), handlers.RouterDeps{
		Auth:     services.NewAuthService(api, suite.desks, sessions),
		Desks:    suite.desks,
		Sessions: sessions,
		Accounts: accounts,
	})

	suite.author = suite.sign("u1", models.RoleAuthor)
	suite.editor = suite.sign("e1", models.RoleEditor)
}

func (suite *DeskTestSuite) TearDownTest() {
	suite.autosaver.Stop()
}

func (suite *DeskTestSuite) sign(userID string, role models.UserRole) string {
	claims := middleware.Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JWTSecret)
	suite.Require().NoError(err)
	return token
}

func (suite *DeskTestSuite) send(method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, response) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var res response
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w, res
}

func (suite *DeskTestSuite) request(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, response) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return suite.send(method, path, token, body, contentType)
}

func (suite *DeskTestSuite) upload(path, token, name string, data []byte) (*httptest.ResponseRecorder, response) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	suite.Require().NoError(err)
	_, err = part.Write(data)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())
	return suite.send(http.MethodPost, path, token, &buf, mw.FormDataContentType())
}

func (suite *DeskTestSuite) openSession(token string, req models.OpenSessionRequest) sessionData {
	w, res := suite.request(http.MethodPost, "/desk/sessions", token, req)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var data sessionData
	suite.Require().NoError(json.Unmarshal(res.Data, &data))
	return data
}

func (suite *DeskTestSuite) fillSession(id string) {
	title, abstract, keywords := "IoT Sensor Networks", "Low-power sensor meshes.", "iot, sensors"
	field := "field-cs"
	base := "/desk/sessions/" + id

	w, _ := suite.request(http.MethodPatch, base+"/form", suite.author, models.FormPatch{Title: &title, Abstract: &abstract, Keywords: &keywords})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPut, base+"/fields", suite.author, models.FieldSelectionRequest{Primary: &field})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPost, base+"/authors", suite.author, models.AuthorInput{FullName: "Nguyen Van A", Email: "a@x.io", IsCorresponding: true})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w, _ = suite.upload(base+"/files/manuscript", suite.author, "paper.pdf", pdfBytes)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *DeskTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *DeskTestSuite) TestMissingTokenRedirectsToLogin() {
	w, res := suite.request(http.MethodGet, "/desk/articles", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"redirect":"/login"}`, string(res.Data))
	suite.Zero(suite.backend.TotalCalls())
}

func (suite *DeskTestSuite) TestForgedTokenRejected() {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{UserID: "u1"}).SignedString([]byte("other-secret"))
	suite.Require().NoError(err)

	w, _ := suite.request(http.MethodGet, "/desk/articles", forged, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *DeskTestSuite) TestListArticlesForwardsToken() {
	suite.backend.SeedArticle(models.Article{Title: "First"})
	suite.backend.SeedArticle(models.Article{Title: "Second"})

	w, res := suite.request(http.MethodGet, "/desk/articles?page=1&limit=1", suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("Bearer "+suite.author, suite.backend.LastAuthorization())

	var data struct {
		Articles   []models.Article       `json:"articles"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(res.Data, &data))
	suite.Len(data.Articles, 1)
	suite.EqualValues(2, data.Pagination["total_pages"])
	links := data.Pagination["links"].(map[string]interface{})
	suite.Contains(links["next"], "page=2")
}

func (suite *DeskTestSuite) TestSubmitThroughSession() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	suite.Equal(services.ModeCreate, s.Wizard.Mode)
	suite.fillSession(s.Session.ID)

	w, res := suite.request(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/submit", suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result services.SubmissionResult
	suite.Require().NoError(json.Unmarshal(res.Data, &result))
	suite.NotEmpty(result.ArticleID)
	article, found := suite.backend.Article(result.ArticleID)
	suite.Require().True(found)
	suite.Equal(models.StatusSubmitted, article.Status)
	suite.Len(suite.backend.FilesOf(result.ArticleID), 1)

	w, res = suite.request(http.MethodGet, "/desk/notifications", suite.author, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(res.Data), "File uploaded successfully")
}

func (suite *DeskTestSuite) TestSubmitEmptyFormReportsFirstError() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})

	w, res := suite.request(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/submit", suite.author, nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("title is required", res.CodeMessage)

	var data struct {
		Errors map[string]string `json:"errors"`
		Focus  string            `json:"focus"`
	}
	suite.Require().NoError(json.Unmarshal(res.Data, &data))
	suite.Equal("title", data.Focus)
	suite.Contains(data.Errors, "manuscript")
	suite.Zero(suite.backend.TotalCalls())
}

func (suite *DeskTestSuite) TestRegistrationFailureCanBeRetried() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	suite.fillSession(s.Session.ID)
	suite.backend.Fail(http.MethodPost, "/article-files/:id/upload", http.StatusInternalServerError, "disk full")

	w, res := suite.request(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/submit", suite.author, nil)
	suite.Equal(http.StatusBadGateway, w.Code)
	var data struct {
		Step      string `json:"step"`
		ArticleID string `json:"articleId"`
	}
	suite.Require().NoError(json.Unmarshal(res.Data, &data))
	suite.Equal(string(services.StepRegisterFile), data.Step)
	suite.NotEmpty(data.ArticleID)

	suite.backend.Recover(http.MethodPost, "/article-files/:id/upload")
	w, _ = suite.request(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/retry", suite.author, nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(1, suite.backend.ArticleCount())
	suite.Len(suite.backend.FilesOf(data.ArticleID), 1)
}

func (suite *DeskTestSuite) TestRejectedManuscriptKeepsSession() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})

	w, res := suite.upload("/desk/sessions/"+s.Session.ID+"/files/manuscript", suite.author, "notes.txt", []byte("plain text"))
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("Manuscript must be a PDF, DOC or DOCX file", res.CodeMessage)
}

func (suite *DeskTestSuite) TestOversizedManuscriptGetsSizeError() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	big := append(append([]byte{}, pdfBytes...), make([]byte, services.MaxManuscriptSize+1)...)

	w, res := suite.upload("/desk/sessions/"+s.Session.ID+"/files/manuscript", suite.author, "paper.pdf", big)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("Manuscript must be 10MB or smaller", res.CodeMessage)

	w, res = suite.request(http.MethodGet, "/desk/sessions/"+s.Session.ID, suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var data sessionData
	suite.Require().NoError(json.Unmarshal(res.Data, &data))
	suite.Nil(data.Wizard.Manuscript)
}

func (suite *DeskTestSuite) TestOversizedThumbnailGetsSizeError() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	big := append(png, make([]byte, services.MaxThumbnailSize)...)

	w, res := suite.upload("/desk/sessions/"+s.Session.ID+"/files/thumbnail", suite.author, "cover.png", big)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("Thumbnail must be 2MB or smaller", res.CodeMessage)
}

// countingReader records how much of a request body the server consumed.
type countingReader struct {
	r    io.Reader
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

func (suite *DeskTestSuite) multipartBody(size int) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "paper.pdf")
	suite.Require().NoError(err)
	_, err = part.Write(append(append([]byte{}, pdfBytes...), make([]byte, size)...))
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())
	return &buf, mw.FormDataContentType()
}

func (suite *DeskTestSuite) TestUploadOverBodyLimitRefusedUnread() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	buf, contentType := suite.multipartBody(services.MaxUploadBody)
	body := &countingReader{r: buf}

	req := httptest.NewRequest(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/files/manuscript", body)
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.author)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusRequestEntityTooLarge, w.Code)
	suite.Zero(body.read)
	var res response
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("Upload must be 20MB or smaller", res.CodeMessage)
}

func (suite *DeskTestSuite) TestChunkedUploadStopsAtBodyLimit() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	buf, contentType := suite.multipartBody(services.MaxUploadBody)
	body := &countingReader{r: buf}

	req := httptest.NewRequest(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/files/manuscript", body)
	req.ContentLength = -1
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.author)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusRequestEntityTooLarge, w.Code)
	suite.LessOrEqual(body.read, int64(services.MaxUploadBody)+1)
}

func (suite *DeskTestSuite) TestDraftSavedAndResumed() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})
	title := "Edge Caching"
	w, _ := suite.request(http.MethodPatch, "/desk/sessions/"+s.Session.ID+"/form", suite.author, models.FormPatch{Title: &title})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPost, "/desk/sessions/"+s.Session.ID+"/draft", suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w, _ = suite.request(http.MethodDelete, "/desk/sessions/"+s.Session.ID, suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, res := suite.request(http.MethodGet, "/desk/drafts", suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var drafts []struct {
		DraftSession string               `json:"draftSession"`
		Snapshot     models.DraftSnapshot `json:"snapshot"`
	}
	suite.Require().NoError(json.Unmarshal(res.Data, &drafts))
	suite.Require().Len(drafts, 1)
	suite.Equal(s.Session.ID, drafts[0].DraftSession)

	resumed := suite.openSession(suite.author, models.OpenSessionRequest{DraftSession: drafts[0].DraftSession})
	suite.Equal("Edge Caching", resumed.Wizard.Form.Title)
	suite.NotNil(resumed.Wizard.LastSavedAt)

	w, res = suite.request(http.MethodGet, "/desk/drafts", suite.editor, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(res.Data))
}

func (suite *DeskTestSuite) TestSessionsArePerUser() {
	s := suite.openSession(suite.author, models.OpenSessionRequest{})

	w, _ := suite.request(http.MethodGet, "/desk/sessions/"+s.Session.ID, suite.editor, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	w, _ = suite.request(http.MethodGet, "/desk/sessions/"+s.Session.ID, suite.author, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *DeskTestSuite) TestEditSessionLoadsArticle() {
	id := suite.backend.SeedArticle(models.Article{Title: "Old title", Keywords: []string{"a", "b"}})

	s := suite.openSession(suite.author, models.OpenSessionRequest{ArticleID: id})
	suite.Equal(services.ModeEdit, s.Wizard.Mode)
	suite.Equal(id, s.Wizard.ArticleID)
	suite.Equal("Old title", s.Wizard.Form.Title)
	suite.Equal("a, b", s.Wizard.Form.Keywords)
}

func (suite *DeskTestSuite) TestStatusChangeRequiresEditor() {
	id := suite.backend.SeedArticle(models.Article{Title: "Paper"})
	body := models.ChangeStatusRequest{Status: "revisions_required", Reason: "Figures"}

	w, _ := suite.request(http.MethodPatch, "/desk/articles/"+id+"/status", suite.author, body)
	suite.Equal(http.StatusForbidden, w.Code)

	w, res := suite.request(http.MethodPatch, "/desk/articles/"+id+"/status", suite.editor, body)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var article models.Article
	suite.Require().NoError(json.Unmarshal(res.Data, &article))
	suite.Equal(models.StatusRevisionRequested, article.Status)
}

func (suite *DeskTestSuite) TestPublishedIssueCannotBeDeleted() {
	id := suite.backend.SeedIssue(models.Issue{Title: "Vol 1", IsPublished: true})

	w, res := suite.request(http.MethodDelete, "/desk/issues/"+id, suite.editor, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Cannot delete published issue", res.CodeMessage)
}

func (suite *DeskTestSuite) TestBackendUnauthorizedDropsDesk() {
	before := suite.desks.For("u1")
	suite.backend.Fail(http.MethodGet, "/articles", http.StatusUnauthorized, "Unauthorized - invalid token")

	w, res := suite.request(http.MethodGet, "/desk/articles", suite.author, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"redirect":"/login"}`, string(res.Data))
	suite.NotSame(before, suite.desks.For("u1"))
}

func (suite *DeskTestSuite) TestLoginAndProfile() {
	suite.backend.AddUser(models.User{ID: "u1", FullName: "Nguyen Van A", Email: "a@x.io", Role: models.RoleAuthor})
	suite.backend.IssueToken(suite.author, "u1")

	w, res := suite.request(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "a@x.io", Password: "secret"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var auth models.AuthResponse
	suite.Require().NoError(json.Unmarshal(res.Data, &auth))
	suite.Equal("token-u1", auth.Token)

	w, res = suite.request(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "nobody@x.io", Password: "secret"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid credentials", res.CodeMessage)

	w, res = suite.request(http.MethodGet, "/desk/profile", suite.author, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var user models.User
	suite.Require().NoError(json.Unmarshal(res.Data, &user))
	suite.Equal("Nguyen Van A", user.FullName)
}

func (suite *DeskTestSuite) TestStateReportsFailures() {
	suite.backend.Fail(http.MethodGet, "/issues", http.StatusInternalServerError, "boom")

	w, _ := suite.request(http.MethodGet, "/desk/issues", suite.editor, nil)
	suite.Equal(http.StatusBadGateway, w.Code)

	w, res := suite.request(http.MethodGet, "/desk/state", suite.editor, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.True(strings.Contains(string(res.Data), "Failed to load issues"))
}

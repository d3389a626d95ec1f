package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"journal-desk/helper"
	"journal-desk/middleware"
	"journal-desk/models"
	"journal-desk/services"
	"journal-desk/uploader"

	"github.com/gin-gonic/gin"
)

// SessionHandler drives submission wizards. Every route except Open and
// GetDrafts works on a session the caller opened.
type SessionHandler struct {
	deskHandler
	sessions *services.SessionManager
	accounts services.AccountDirectory
}

// draftView tells the front end how to reopen a saved draft.
type draftView struct {
	ArticleID    string               `json:"articleId,omitempty"`
	DraftSession string               `json:"draftSession,omitempty"`
	Snapshot     models.DraftSnapshot `json:"snapshot"`
	SavedAt      time.Time            `json:"savedAt"`
	LastSaved    string               `json:"lastSaved"`
}

type sessionResponse struct {
	Session *services.Session   `json:"session"`
	Wizard  services.WizardView `json:"wizard"`
}

func NewSessionHandler(desks *services.DeskRegistry, authService services.AuthService, sessions *services.SessionManager, accounts services.AccountDirectory) *SessionHandler {
	return &SessionHandler{
		deskHandler: deskHandler{desks: desks, auth: authService, Helper: &helper.HTTPHelper{}},
		sessions:    sessions,
		accounts:    accounts,
	}
}

func (h *SessionHandler) session(c *gin.Context) (*services.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"), owner(c))
	if err != nil {
		h.Helper.SendNotFoundError(c, "Submission session not found", h.Helper.EmptyJsonMap())
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) sendSession(c *gin.Context, message string, s *services.Session) {
	h.Helper.SendSuccess(c, message, sessionResponse{Session: s, Wizard: s.Wizard.View()})
}

// OpenSession starts a new submission, resumes a saved one, or opens an
// article for editing.
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req models.OpenSessionRequest
	if !h.bind(c, &req) {
		return
	}

	var article *models.Article
	if req.ArticleID != "" {
		a, err := h.desk(c).Articles.GetByID(c.Request.Context(), req.ArticleID)
		if err != nil {
			h.fail(c, err)
			return
		}
		article = a
	}

	s, err := h.sessions.Open(c.Request.Context(), owner(c), article, req.DraftSession)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendSession(c, "Session opened", s)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.sendSession(c, "Session loaded", s)
}

func (h *SessionHandler) PatchForm(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch models.FormPatch
	if !h.bind(c, &patch) {
		return
	}

	s.Wizard.Patch(patch)
	h.sendSession(c, "Form updated", s)
}

// SetStage accepts "next", "back" or a stage name.
func (h *SessionHandler) SetStage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req models.StageRequest
	if !h.bind(c, &req) {
		return
	}

	var err error
	switch req.Stage {
	case "next":
		err = s.Wizard.Next()
	case "back":
		s.Wizard.Back()
	default:
		err = s.Wizard.GoTo(services.Stage(req.Stage))
	}
	if err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	h.sendSession(c, "Stage changed", s)
}

func (h *SessionHandler) SetFields(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req models.FieldSelectionRequest
	if !h.bind(c, &req) {
		return
	}

	if req.Primary != nil {
		s.Wizard.SetPrimaryField(*req.Primary)
	}
	if req.AddSecondary != "" && !s.Wizard.AddSecondaryField(req.AddSecondary) {
		h.Helper.SendBadRequest(c, "The primary field cannot also be a secondary field", h.Helper.EmptyJsonMap())
		return
	}
	if req.RemoveSecondary != "" {
		s.Wizard.RemoveSecondaryField(req.RemoveSecondary)
	}
	h.sendSession(c, "Fields updated", s)
}

func (h *SessionHandler) AddAuthor(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var in models.AuthorInput
	if !h.bind(c, &in) {
		return
	}

	hasAccount := h.accounts.EmailExists(c.Request.Context(), in.Email)
	if err := s.Wizard.AddAuthor(in, hasAccount); err != nil {
		h.fail(c, err)
		return
	}
	h.sendSession(c, "Author added", s)
}

func (h *SessionHandler) RemoveAuthor(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err == nil {
		err = s.Wizard.RemoveAuthor(index)
	}
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid author position", h.Helper.EmptyJsonMap())
		return
	}
	h.sendSession(c, "Author removed", s)
}

// StageFile reads the multipart "file" part into the slot named by :kind.
func (h *SessionHandler) StageFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	kind := c.Param("kind")
	limit, known := services.MaxUploadSize(kind)
	if !known {
		h.Helper.SendNotFoundError(c, "Unknown file slot", h.Helper.EmptyJsonMap())
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Helper.SendPayloadTooLargeError(c, middleware.TooLargeMessage(tooLarge.Limit))
			return
		}
		h.Helper.SendBadRequest(c, "A file is required", h.Helper.EmptyJsonMap())
		return
	}
	file, err := uploader.FromMultipart(fh, limit)
	if err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	switch kind {
	case "thumbnail":
		err = s.Wizard.StageThumbnail(file)
	case "manuscript":
		err = s.Wizard.StageManuscript(file)
	default:
		err = s.Wizard.StageAttachment(file)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendSession(c, "File staged", s)
}

func (h *SessionHandler) RemoveFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	switch c.Param("kind") {
	case "thumbnail":
		s.Wizard.ClearThumbnail()
	case "manuscript":
		s.Wizard.ClearManuscript()
	case "attachments":
		index, err := strconv.Atoi(c.Query("index"))
		if err == nil {
			err = s.Wizard.RemoveAttachment(index)
		}
		if err != nil {
			h.Helper.SendBadRequest(c, "Invalid attachment position", h.Helper.EmptyJsonMap())
			return
		}
	default:
		h.Helper.SendNotFoundError(c, "Unknown file slot", h.Helper.EmptyJsonMap())
		return
	}
	h.sendSession(c, "File removed", s)
}

func (h *SessionHandler) SaveDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	draft, err := h.sessions.SaveDraft(c.Request.Context(), s)
	if err != nil {
		h.Helper.SendError(c, "Failed to save draft", h.Helper.EmptyJsonMap(), 500, `draftError`)
		return
	}
	h.Helper.SendSuccess(c, "Draft saved", draft)
}

func (h *SessionHandler) ClearDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.sessions.ClearDraft(c.Request.Context(), s); err != nil {
		h.Helper.SendError(c, "Failed to clear draft", h.Helper.EmptyJsonMap(), 500, `draftError`)
		return
	}
	h.sendSession(c, "Draft cleared", s)
}

// Submit creates the article, or saves the edits of an article being edited.
func (h *SessionHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	submissions := h.desk(c).Submissions
	var (
		result *services.SubmissionResult
		err    error
	)
	if s.Wizard.Mode() == services.ModeEdit {
		result, err = submissions.SaveEdits(c.Request.Context(), s.Wizard, s.Key)
	} else {
		result, err = submissions.Submit(c.Request.Context(), s.Wizard, s.Key)
	}
	if err != nil {
		h.failSubmission(c, s, err)
		return
	}
	h.Helper.SendSuccess(c, "Article submitted successfully", result)
}

// RetryRegistration re-sends a manuscript record whose registration failed.
func (h *SessionHandler) RetryRegistration(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	result, err := h.desk(c).Submissions.RetryRegistration(c.Request.Context(), s.Wizard, s.Key)
	if err != nil {
		h.failSubmission(c, s, err)
		return
	}
	h.Helper.SendSuccess(c, "Manuscript registered", result)
}

// failSubmission reports the step that stopped the submission together with
// the wizard, so the front end can show per-field errors.
func (h *SessionHandler) failSubmission(c *gin.Context, s *services.Session, err error) {
	var subErr *services.SubmissionError
	if !errors.As(err, &subErr) || errors.Is(err, models.ErrUnauthorized) {
		h.fail(c, err)
		return
	}

	message := err.Error()
	var opErr *models.OpError
	if errors.As(err, &opErr) {
		message = opErr.Message
	} else if subErr.Step == services.StepUploadThumbnail {
		message = "Failed to upload thumbnail"
	} else if subErr.Step == services.StepUploadManuscript {
		message = "Failed to upload manuscript"
	}
	code := h.Helper.GetStatusCode(err)
	h.Helper.SendError(c, message, map[string]interface{}{
		"step":      subErr.Step,
		"articleId": subErr.ArticleID,
		"wizard":    s.Wizard.View(),
	}, code, `submissionError`)
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id"), owner(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Session closed", h.Helper.EmptyJsonMap())
}

// GetDrafts lists the caller's saved drafts, newest first.
func (h *SessionHandler) GetDrafts(c *gin.Context) {
	drafts, err := h.sessions.Drafts(c.Request.Context(), owner(c))
	if err != nil {
		h.Helper.SendError(c, "Failed to load drafts", h.Helper.EmptyJsonMap(), 500, `draftError`)
		return
	}
	views := make([]draftView, 0, len(drafts))
	for _, d := range drafts {
		key, ok := models.ParseDraftKey(d.Key)
		if !ok {
			continue
		}
		views = append(views, draftView{
			ArticleID:    key.ArticleID,
			DraftSession: key.Session,
			Snapshot:     d.Snapshot,
			SavedAt:      d.SavedAt,
			LastSaved:    d.LastSavedLabel(),
		})
	}
	h.Helper.SendSuccess(c, "Drafts loaded", views)
}

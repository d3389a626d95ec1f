package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"journal-desk/models"
	"journal-desk/uploader"
)

type Stage string

const (
	StageBasic   Stage = "basic"
	StageAuthors Stage = "authors"
	StageFiles   Stage = "files"
)

var stageOrder = []Stage{StageBasic, StageAuthors, StageFiles}

// fieldStage tells which stage shows a given error key.
var fieldStage = map[string]Stage{
	"title":       StageBasic,
	"abstract":    StageBasic,
	"keywords":    StageBasic,
	"field":       StageBasic,
	"thumbnail":   StageBasic,
	"authors":     StageAuthors,
	"authorName":  StageAuthors,
	"authorEmail": StageAuthors,
	"manuscript":  StageFiles,
	"attachments": StageFiles,
}

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

const (
	MaxThumbnailSize  = 2 << 20
	MaxManuscriptSize = 10 << 20
	MaxAttachmentSize = 10 << 20

	// MaxUploadBody caps a whole file-staging request. Files up to it are
	// answered with the slot's size message; larger bodies are refused unread.
	MaxUploadBody = 2 * MaxManuscriptSize

	DefaultLanguage = "vi"
)

var manuscriptExts = []string{".pdf", ".doc", ".docx"}

// FormState is the wizard's shared form. It survives stage changes.
type FormState struct {
	TitlePrefix     string                 `json:"titlePrefix"`
	Title           string                 `json:"title"`
	Subtitle        string                 `json:"subtitle"`
	Abstract        string                 `json:"abstract"`
	Keywords        string                 `json:"keywords"`
	ArticleLanguage string                 `json:"articleLanguage"`
	OtherLanguage   string                 `json:"otherLanguage"`
	Field           string                 `json:"field"`
	SecondaryFields []string               `json:"secondaryFields"`
	Authors         []models.ArticleAuthor `json:"authors"`
	SubmitterNote   string                 `json:"submitterNote"`
}

func blankForm() FormState {
	return FormState{ArticleLanguage: DefaultLanguage, SecondaryFields: []string{}, Authors: []models.ArticleAuthor{}}
}

func (f FormState) clone() FormState {
	f.SecondaryFields = append([]string{}, f.SecondaryFields...)
	f.Authors = append([]models.ArticleAuthor{}, f.Authors...)
	return f
}

type createCheck struct {
	Title      string                 `json:"title" validate:"notblank"`
	Abstract   string                 `json:"abstract" validate:"notblank"`
	Keywords   []string               `json:"keywords" validate:"nonempty"`
	Field      string                 `json:"field" validate:"required"`
	Manuscript *uploader.File         `json:"manuscript" validate:"required"`
	Authors    []models.ArticleAuthor `json:"authors" validate:"nonempty"`
}

type editCheck struct {
	Title    string                 `json:"title" validate:"notblank"`
	Abstract string                 `json:"abstract" validate:"notblank"`
	Keywords []string               `json:"keywords" validate:"nonempty"`
	Field    string                 `json:"field" validate:"required"`
	Authors  []models.ArticleAuthor `json:"authors" validate:"nonempty"`
}

// pendingRegistration is a manuscript uploaded for a created article whose
// file record has not been confirmed.
type pendingRegistration struct {
	ArticleID string
	Request   models.RegisterFileRequest
}

// Wizard is the three-stage submission form: basic info, authors, files.
type Wizard struct {
	mu sync.Mutex

	mode      Mode
	articleID string
	stage     Stage
	form      FormState

	thumbnail         *uploader.File
	existingThumbnail string
	manuscript        *uploader.File
	attachments       []*uploader.File

	errors      *models.FieldErrors
	focus       string
	submitting  bool
	pending     *pendingRegistration
	lastSavedAt *time.Time

	validator      *Validator
	attachmentExts []string
}

func NewWizard(v *Validator, attachmentExts []string) *Wizard {
	return &Wizard{
		mode:           ModeCreate,
		stage:          StageBasic,
		form:           blankForm(),
		errors:         models.NewFieldErrors(),
		validator:      v,
		attachmentExts: attachmentExts,
	}
}

// NewEditWizard opens the form on an existing article.
func NewEditWizard(v *Validator, attachmentExts []string, a models.Article) *Wizard {
	w := NewWizard(v, attachmentExts)
	w.mode = ModeEdit
	w.articleID = a.ID
	w.existingThumbnail = a.Thumbnail

	f := blankForm()
	f.TitlePrefix = a.TitlePrefix
	f.Title = a.Title
	f.Subtitle = a.Subtitle
	f.Abstract = a.Abstract
	f.Keywords = strings.Join(a.Keywords, ", ")
	if a.ArticleLanguage != "" {
		f.ArticleLanguage = a.ArticleLanguage
	}
	f.OtherLanguage = a.OtherLanguage
	f.Field = models.RefID(a.Field)
	for _, sf := range a.SecondaryFields {
		if sf.ID != f.Field {
			f.SecondaryFields = append(f.SecondaryFields, sf.ID)
		}
	}
	f.Authors = append(f.Authors, a.Authors...)
	f.SubmitterNote = a.SubmitterNote
	w.form = f
	return w
}

func (w *Wizard) Mode() Mode { return w.mode }

func (w *Wizard) ArticleID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.articleID
}

func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Next advances one stage. The files stage is last.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.Index(stageOrder, w.stage)
	if i == len(stageOrder)-1 {
		return fmt.Errorf("%s is the last stage", w.stage)
	}
	w.stage = stageOrder[i+1]
	return nil
}

// Back moves one stage back. Form values are kept.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := slices.Index(stageOrder, w.stage); i > 0 {
		w.stage = stageOrder[i-1]
	}
}

func (w *Wizard) GoTo(stage Stage) error {
	if !slices.Contains(stageOrder, stage) {
		return fmt.Errorf("unknown stage %q", stage)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stage = stage
	return nil
}

func (w *Wizard) Form() FormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.clone()
}

func (w *Wizard) Patch(p models.FormPatch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	set := func(dst *string, src *string, key string) {
		if src != nil {
			*dst = *src
			w.errors.Delete(key)
		}
	}
	set(&w.form.TitlePrefix, p.TitlePrefix, "titlePrefix")
	set(&w.form.Title, p.Title, "title")
	set(&w.form.Subtitle, p.Subtitle, "subtitle")
	set(&w.form.Abstract, p.Abstract, "abstract")
	set(&w.form.Keywords, p.Keywords, "keywords")
	set(&w.form.ArticleLanguage, p.ArticleLanguage, "articleLanguage")
	set(&w.form.OtherLanguage, p.OtherLanguage, "otherLanguage")
	set(&w.form.SubmitterNote, p.SubmitterNote, "submitterNote")
}

// SetPrimaryField selects the primary field and drops it from the
// secondary set.
func (w *Wizard) SetPrimaryField(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Field = id
	w.form.SecondaryFields = slices.DeleteFunc(w.form.SecondaryFields, func(s string) bool { return s == id })
	w.errors.Delete("field")
}

// AddSecondaryField reports whether id was added. The primary field and
// duplicates are refused.
func (w *Wizard) AddSecondaryField(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == "" || id == w.form.Field || slices.Contains(w.form.SecondaryFields, id) {
		return false
	}
	w.form.SecondaryFields = append(w.form.SecondaryFields, id)
	return true
}

func (w *Wizard) RemoveSecondaryField(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.SecondaryFields = slices.DeleteFunc(w.form.SecondaryFields, func(s string) bool { return s == id })
}

// AddAuthor validates the author sub-form and appends it. The stage does
// not change.
func (w *Wizard) AddAuthor(in models.AuthorInput, hasAccount bool) error {
	errs := w.validator.Check(in)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors.Delete("authorName")
	w.errors.Delete("authorEmail")
	if errs != nil {
		for _, k := range errs.Keys() {
			w.errors.Set(k, errs.Get(k))
		}
		return &models.ValidationError{Fields: errs}
	}

	author := in.Author()
	author.HasAccount = hasAccount
	author.Order = len(w.form.Authors) + 1
	w.form.Authors = append(w.form.Authors, author)
	w.errors.Delete("authors")
	return nil
}

func (w *Wizard) RemoveAuthor(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.form.Authors) {
		return fmt.Errorf("no author at position %d", index)
	}
	w.form.Authors = slices.Delete(w.form.Authors, index, index+1)
	for i := range w.form.Authors {
		w.form.Authors[i].Order = i + 1
	}
	return nil
}

// MaxUploadSize is the largest file the named slot accepts, or false for an
// unknown slot.
func MaxUploadSize(slot string) (int64, bool) {
	switch slot {
	case "thumbnail":
		return MaxThumbnailSize, true
	case "manuscript":
		return MaxManuscriptSize, true
	case "attachments":
		return MaxAttachmentSize, true
	}
	return 0, false
}

// StageThumbnail accepts an image of at most 2MB. A rejected file leaves the
// previous selection in place.
func (w *Wizard) StageThumbnail(f *uploader.File) error {
	var msg string
	switch {
	case !f.IsImage():
		msg = "Thumbnail must be an image file"
	case f.Size > MaxThumbnailSize:
		msg = "Thumbnail must be 2MB or smaller"
	}
	return w.stageFile("thumbnail", msg, func() { w.thumbnail = f })
}

// StageManuscript accepts a .pdf, .doc or .docx of at most 10MB.
func (w *Wizard) StageManuscript(f *uploader.File) error {
	var msg string
	switch {
	case !slices.Contains(manuscriptExts, f.Ext()):
		msg = "Manuscript must be a PDF, DOC or DOCX file"
	case f.Size > MaxManuscriptSize:
		msg = "Manuscript must be 10MB or smaller"
	}
	return w.stageFile("manuscript", msg, func() { w.manuscript = f })
}

// StageAttachment accepts a file with one of the configured extensions.
func (w *Wizard) StageAttachment(f *uploader.File) error {
	var msg string
	switch {
	case !slices.Contains(w.attachmentExts, f.Ext()):
		msg = fmt.Sprintf("Allowed file types: %s", strings.Join(w.attachmentExts, ", "))
	case f.Size > MaxAttachmentSize:
		msg = "File must be 10MB or smaller"
	}
	return w.stageFile("attachments", msg, func() { w.attachments = append(w.attachments, f) })
}

func (w *Wizard) stageFile(key, msg string, accept func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if msg != "" {
		w.errors.Set(key, msg)
		fe := models.NewFieldErrors()
		fe.Set(key, msg)
		return &models.ValidationError{Fields: fe}
	}
	accept()
	w.errors.Delete(key)
	return nil
}

func (w *Wizard) ClearThumbnail() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.thumbnail = nil
}

func (w *Wizard) ClearManuscript() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manuscript = nil
}

func (w *Wizard) RemoveAttachment(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.attachments) {
		return fmt.Errorf("no attachment at position %d", index)
	}
	w.attachments = slices.Delete(w.attachments, index, index+1)
	return nil
}

func (w *Wizard) Manuscript() *uploader.File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manuscript
}

func (w *Wizard) Thumbnail() *uploader.File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.thumbnail
}

func (w *Wizard) Errors() *models.FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errors.Clone()
}

// Focus is the first invalid key of the last failed validation.
func (w *Wizard) Focus() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focus
}

// Validate runs the submit-time checks. On failure the errors replace the
// previous ones, the first key becomes the focus, and the wizard moves to
// the stage showing it.
func (w *Wizard) Validate() *models.FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()

	keywords := SplitKeywords(w.form.Keywords)
	var errs *models.FieldErrors
	if w.mode == ModeCreate {
		errs = w.validator.Check(createCheck{
			Title:      w.form.Title,
			Abstract:   w.form.Abstract,
			Keywords:   keywords,
			Field:      w.form.Field,
			Manuscript: w.manuscript,
			Authors:    w.form.Authors,
		})
	} else {
		errs = w.validator.Check(editCheck{
			Title:    w.form.Title,
			Abstract: w.form.Abstract,
			Keywords: keywords,
			Field:    w.form.Field,
			Authors:  w.form.Authors,
		})
	}

	if errs == nil {
		w.errors = models.NewFieldErrors()
		w.focus = ""
		return nil
	}
	w.errors = errs.Clone()
	w.focus = errs.First()
	if stage, ok := fieldStage[w.focus]; ok {
		w.stage = stage
	}
	return errs
}

// Snapshot projects the persisted subset of the form.
func (w *Wizard) Snapshot() models.DraftSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.DraftSnapshot{
		Title:           w.form.Title,
		Abstract:        w.form.Abstract,
		Keywords:        w.form.Keywords,
		ArticleLanguage: w.form.ArticleLanguage,
		Authors:         append([]models.ArticleAuthor{}, w.form.Authors...),
	}
}

// Restore fills the form from a saved draft. Files must be staged again.
func (w *Wizard) Restore(d models.Draft) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Title = d.Snapshot.Title
	w.form.Abstract = d.Snapshot.Abstract
	w.form.Keywords = d.Snapshot.Keywords
	w.form.ArticleLanguage = d.Snapshot.ArticleLanguage
	w.form.Authors = append([]models.ArticleAuthor{}, d.Snapshot.Authors...)
	saved := d.SavedAt
	w.lastSavedAt = &saved
}

func (w *Wizard) MarkSaved(at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSavedAt = &at
}

// MarkSavedDraft records d as the latest saved draft.
func (w *Wizard) MarkSavedDraft(d *models.Draft) {
	w.MarkSaved(d.SavedAt)
}

func (w *Wizard) LastSavedAt() *time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastSavedAt == nil {
		return nil
	}
	t := *w.lastSavedAt
	return &t
}

// Reset returns the form to a blank template and drops staged files.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stage = StageBasic
	w.form = blankForm()
	w.thumbnail = nil
	w.manuscript = nil
	w.attachments = nil
	w.errors = models.NewFieldErrors()
	w.focus = ""
	w.lastSavedAt = nil
	w.pending = nil
}

func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *Wizard) beginSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return false
	}
	w.submitting = true
	return true
}

func (w *Wizard) endSubmit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
}

func (w *Wizard) setError(key, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors.Set(key, msg)
}

func (w *Wizard) setPending(p *pendingRegistration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = p
	if p != nil {
		w.articleID = p.ArticleID
	}
}

func (w *Wizard) pendingRegistration() *pendingRegistration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// staged returns the staged files for the submission sequence.
func (w *Wizard) staged() (thumb, manuscript *uploader.File, attachments []*uploader.File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.thumbnail, w.manuscript, append([]*uploader.File(nil), w.attachments...)
}

// WizardView is the JSON shape of a wizard for the front end.
type WizardView struct {
	Mode              Mode                `json:"mode"`
	ArticleID         string              `json:"articleId,omitempty"`
	Stage             Stage               `json:"stage"`
	Form              FormState           `json:"form"`
	Thumbnail         *uploader.File      `json:"thumbnail"`
	ExistingThumbnail string              `json:"existingThumbnail,omitempty"`
	Manuscript        *uploader.File      `json:"manuscript"`
	Attachments       []*uploader.File    `json:"attachments"`
	Errors            *models.FieldErrors `json:"errors"`
	Focus             string              `json:"focus,omitempty"`
	Submitting        bool                `json:"submitting"`
	PendingArticleID  string              `json:"pendingArticleId,omitempty"`
	LastSavedAt       *time.Time          `json:"lastSavedAt,omitempty"`
}

func (w *Wizard) View() WizardView {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := WizardView{
		Mode:              w.mode,
		ArticleID:         w.articleID,
		Stage:             w.stage,
		Form:              w.form.clone(),
		Thumbnail:         w.thumbnail,
		ExistingThumbnail: w.existingThumbnail,
		Manuscript:        w.manuscript,
		Attachments:       append([]*uploader.File{}, w.attachments...),
		Errors:            w.errors.Clone(),
		Focus:             w.focus,
		Submitting:        w.submitting,
		LastSavedAt:       w.lastSavedAt,
	}
	if w.pending != nil {
		v.PendingArticleID = w.pending.ArticleID
	}
	return v
}

// SplitKeywords splits a comma-separated list, trimming and dropping blanks.
func SplitKeywords(raw string) []string {
	out := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

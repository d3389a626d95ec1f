package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"journal-desk/models"
	"journal-desk/notify"
	"journal-desk/uploader"

	"github.com/microcosm-cc/bluemonday"
)

// Step names a stage of the submission sequence.
type Step string

const (
	StepUploadThumbnail  Step = "uploadThumbnail"
	StepUploadManuscript Step = "uploadManuscript"
	StepCreateArticle    Step = "createArticle"
	StepUpdateArticle    Step = "updateArticle"
	StepRegisterFile     Step = "registerFile"
)

// SubmissionError reports where a submission stopped. ArticleID is set once
// the article exists on the backend.
type SubmissionError struct {
	Step      Step
	ArticleID string
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.ArticleID != "" {
		return fmt.Sprintf("%s failed for article %s: %v", e.Step, e.ArticleID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type SubmissionResult struct {
	ArticleID string              `json:"articleId"`
	Article   *models.Article     `json:"article,omitempty"`
	File      *models.ArticleFile `json:"file,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// SubmissionService runs the wizard's submit sequence against the stores.
type SubmissionService struct {
	articles *ArticleStore
	files    *FileStore
	uploader uploader.Uploader
	drafts   *DraftService
	notifier notify.Notifier
	policy   *bluemonday.Policy
}

func NewSubmissionService(articles *ArticleStore, files *FileStore, up uploader.Uploader, drafts *DraftService, notifier notify.Notifier) *SubmissionService {
	return &SubmissionService{
		articles: articles,
		files:    files,
		uploader: up,
		drafts:   drafts,
		notifier: notifier,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Submit creates a new article from the wizard. The sequence is thumbnail
// upload, manuscript upload, article creation, manuscript registration, and
// finally draft removal. Uploaded binaries are deleted again if creation
// fails. A failed registration keeps the draft and can be retried with
// RetryRegistration.
func (s *SubmissionService) Submit(ctx context.Context, w *Wizard, key models.DraftKey) (*SubmissionResult, error) {
	if !w.beginSubmit() {
		return nil, models.ErrSubmissionInFlight
	}
	defer w.endSubmit()

	if w.pendingRegistration() != nil {
		return s.retry(ctx, w, key)
	}
	if errs := w.Validate(); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	in := s.articleInput(w.Form())
	in.Status = models.StatusSubmitted
	thumb, manuscript, _ := w.staged()

	var uploaded []uploader.Blob
	if thumb != nil {
		img, err := s.uploader.UploadImage(ctx, thumb, uploader.ImageThumbnail)
		if err != nil {
			log.Printf("[SubmissionService] thumbnail upload: %v", err)
			w.setError("thumbnail", "Failed to upload thumbnail")
			s.notifier.Error("Failed to upload thumbnail")
			return nil, &SubmissionError{Step: StepUploadThumbnail, Err: err}
		}
		in.Thumbnail = img.SecureURL
		uploaded = append(uploaded, img.Blob)
	}

	doc, err := s.uploader.UploadFile(ctx, manuscript)
	if err != nil {
		log.Printf("[SubmissionService] manuscript upload: %v", err)
		s.discard(ctx, uploaded)
		w.setError("manuscript", "Failed to upload manuscript")
		s.notifier.Error("Failed to upload manuscript")
		return nil, &SubmissionError{Step: StepUploadManuscript, Err: err}
	}
	uploaded = append(uploaded, doc.Blob)

	id, err := s.articles.Create(ctx, in)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, &SubmissionError{Step: StepCreateArticle, Err: err}
	}

	reg := RegistrationFor(id, manuscript, doc, models.FileManuscript, 1)
	w.setPending(&pendingRegistration{ArticleID: id, Request: reg})
	return s.register(ctx, w, key, reg)
}

// RetryRegistration re-sends the manuscript record for an article created by
// an earlier Submit whose registration failed.
func (s *SubmissionService) RetryRegistration(ctx context.Context, w *Wizard, key models.DraftKey) (*SubmissionResult, error) {
	if !w.beginSubmit() {
		return nil, models.ErrSubmissionInFlight
	}
	defer w.endSubmit()
	return s.retry(ctx, w, key)
}

func (s *SubmissionService) retry(ctx context.Context, w *Wizard, key models.DraftKey) (*SubmissionResult, error) {
	p := w.pendingRegistration()
	if p == nil {
		return nil, models.ErrNothingToSubmit
	}
	return s.register(ctx, w, key, p.Request)
}

func (s *SubmissionService) register(ctx context.Context, w *Wizard, key models.DraftKey, reg models.RegisterFileRequest) (*SubmissionResult, error) {
	file, err := s.files.Register(ctx, reg)
	if err != nil {
		return nil, &SubmissionError{Step: StepRegisterFile, ArticleID: reg.ArticleID, Err: err}
	}

	result := &SubmissionResult{ArticleID: reg.ArticleID, File: file}
	if err := s.drafts.Clear(detached(ctx), key); err != nil {
		result.Warnings = append(result.Warnings, "Failed to clear saved draft")
	}
	w.Reset()
	return result, nil
}

// SaveEdits updates an existing article. The thumbnail and newly staged
// files are sent after the update; their failures become warnings.
func (s *SubmissionService) SaveEdits(ctx context.Context, w *Wizard, key models.DraftKey) (*SubmissionResult, error) {
	if w.Mode() != ModeEdit {
		return nil, errors.New("wizard is not editing an article")
	}
	if !w.beginSubmit() {
		return nil, models.ErrSubmissionInFlight
	}
	defer w.endSubmit()

	if errs := w.Validate(); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	id := w.ArticleID()
	updated, err := s.articles.Update(ctx, id, s.articleInput(w.Form()))
	if err != nil {
		return nil, &SubmissionError{Step: StepUpdateArticle, ArticleID: id, Err: err}
	}
	result := &SubmissionResult{ArticleID: id, Article: updated}

	thumb, manuscript, attachments := w.staged()
	if thumb != nil {
		img, err := s.uploader.UploadImage(ctx, thumb, uploader.ImageThumbnail)
		if err != nil {
			log.Printf("[SubmissionService] thumbnail upload: %v", err)
			s.notifier.Error("Failed to upload thumbnail")
			result.Warnings = append(result.Warnings, "Failed to upload thumbnail")
		} else if a, err := s.articles.SetThumbnail(ctx, id, img.SecureURL); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			result.Article = a
		}
	}

	if manuscript != nil {
		if f, err := s.files.UploadAndRegister(ctx, id, manuscript, models.FileManuscript, 1); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", manuscript.Name, err))
		} else {
			result.File = f
		}
	}
	for _, f := range attachments {
		if _, err := s.files.UploadAndRegister(ctx, id, f, models.FileMain, 1); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", f.Name, err))
		}
	}

	if err := s.drafts.Clear(detached(ctx), key); err != nil {
		result.Warnings = append(result.Warnings, "Failed to clear saved draft")
	}
	return result, nil
}

// discard removes binaries orphaned by a failed submission.
func (s *SubmissionService) discard(ctx context.Context, blobs []uploader.Blob) {
	ctx = detached(ctx)
	for _, b := range blobs {
		if err := s.uploader.Delete(ctx, b); err != nil {
			log.Printf("[SubmissionService] failed to discard %s: %v", b.Key, err)
		}
	}
}

func (s *SubmissionService) articleInput(f FormState) models.ArticleInput {
	keywords := SplitKeywords(f.Keywords)
	for i, k := range keywords {
		keywords[i] = s.clean(k)
	}
	language := f.ArticleLanguage
	if language == "" {
		language = DefaultLanguage
	}
	return models.ArticleInput{
		TitlePrefix:     s.clean(f.TitlePrefix),
		Title:           s.clean(f.Title),
		Subtitle:        s.clean(f.Subtitle),
		Abstract:        s.clean(f.Abstract),
		Keywords:        keywords,
		ArticleLanguage: language,
		OtherLanguage:   s.clean(f.OtherLanguage),
		Authors:         f.Authors,
		Field:           f.Field,
		SecondaryFields: f.SecondaryFields,
		SubmitterNote:   s.clean(f.SubmitterNote),
	}
}

// clean strips markup from free text, leaving plain characters unescaped.
func (s *SubmissionService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

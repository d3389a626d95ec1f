package services

import (
	"testing"
	"time"

	"journal-desk/models"
	"journal-desk/uploader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardStages(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	assert.Equal(t, StageBasic, w.Stage())

	require.NoError(t, w.Next())
	assert.Equal(t, StageAuthors, w.Stage())
	require.NoError(t, w.Next())
	assert.Equal(t, StageFiles, w.Stage())
	assert.Error(t, w.Next())

	w.Back()
	assert.Equal(t, StageAuthors, w.Stage())
	require.NoError(t, w.GoTo(StageBasic))
	w.Back()
	assert.Equal(t, StageBasic, w.Stage())
	assert.Error(t, w.GoTo("review"))
}

func TestWizardFormSurvivesStageChanges(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	w.Patch(models.FormPatch{Title: strPtr("IoT")})
	require.NoError(t, w.Next())
	w.Back()
	assert.Equal(t, "IoT", w.Form().Title)
	assert.Equal(t, DefaultLanguage, w.Form().ArticleLanguage)
}

func TestWizardSecondaryNeverHoldsPrimary(t *testing.T) {
	w := NewWizard(NewValidator(), nil)

	assert.True(t, w.AddSecondaryField("f1"))
	assert.True(t, w.AddSecondaryField("f2"))
	assert.False(t, w.AddSecondaryField("f2"))
	assert.False(t, w.AddSecondaryField(""))

	w.SetPrimaryField("f1")
	assert.Equal(t, []string{"f2"}, w.Form().SecondaryFields)
	assert.False(t, w.AddSecondaryField("f1"))

	w.SetPrimaryField("f2")
	assert.Empty(t, w.Form().SecondaryFields)
	assert.True(t, w.AddSecondaryField("f1"))

	form := w.Form()
	assert.NotContains(t, form.SecondaryFields, form.Field)
}

func TestWizardAddAuthorValidates(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	require.NoError(t, w.Next())

	err := w.AddAuthor(models.AuthorInput{FullName: "", Email: "nope"}, false)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"authorName", "authorEmail"}, verr.Fields.Keys())
	assert.Equal(t, "authorName is required", w.Errors().Get("authorName"))
	assert.Equal(t, "authorEmail must be a valid email address", w.Errors().Get("authorEmail"))
	assert.Empty(t, w.Form().Authors)

	require.NoError(t, w.AddAuthor(models.AuthorInput{FullName: "Nguyen Van A", Email: "a@x.io"}, true))
	assert.Equal(t, StageAuthors, w.Stage())
	assert.False(t, w.Errors().Has("authorName"))
	require.Len(t, w.Form().Authors, 1)
	assert.True(t, w.Form().Authors[0].HasAccount)
	assert.Equal(t, 1, w.Form().Authors[0].Order)
}

func TestWizardRemoveAuthorRenumbers(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	require.NoError(t, w.AddAuthor(models.AuthorInput{FullName: "A", Email: "a@x.io"}, false))
	require.NoError(t, w.AddAuthor(models.AuthorInput{FullName: "B", Email: "b@x.io"}, false))

	require.NoError(t, w.RemoveAuthor(0))
	authors := w.Form().Authors
	require.Len(t, authors, 1)
	assert.Equal(t, "B", authors[0].FullName)
	assert.Equal(t, 1, authors[0].Order)
	assert.Error(t, w.RemoveAuthor(3))
}

func TestWizardRejectsOversizedManuscriptAndKeepsPrevious(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	require.NoError(t, w.StageManuscript(uploader.NewFile("paper.pdf", pdfBytes)))

	err := w.StageManuscript(uploader.NewFile("big.pdf", make([]byte, 12<<20)))
	require.Error(t, err)
	assert.Equal(t, "Manuscript must be 10MB or smaller", w.Errors().Get("manuscript"))
	assert.Equal(t, "paper.pdf", w.Manuscript().Name)
}

func TestWizardFileGates(t *testing.T) {
	w := NewWizard(NewValidator(), []string{".pdf", ".zip"})

	assert.Error(t, w.StageManuscript(uploader.NewFile("paper.txt", []byte("plain text"))))
	assert.Equal(t, "Manuscript must be a PDF, DOC or DOCX file", w.Errors().Get("manuscript"))

	assert.Error(t, w.StageThumbnail(uploader.NewFile("cover.pdf", pdfBytes)))
	assert.Equal(t, "Thumbnail must be an image file", w.Errors().Get("thumbnail"))
	big := uploader.NewFile("cover.png", pngBytes)
	big.Size = 3 << 20
	assert.Error(t, w.StageThumbnail(big))
	assert.Equal(t, "Thumbnail must be 2MB or smaller", w.Errors().Get("thumbnail"))
	require.NoError(t, w.StageThumbnail(uploader.NewFile("cover.png", pngBytes)))
	assert.False(t, w.Errors().Has("thumbnail"))

	assert.Error(t, w.StageAttachment(uploader.NewFile("data.exe", []byte("MZ"))))
	assert.Equal(t, "Allowed file types: .pdf, .zip", w.Errors().Get("attachments"))
	require.NoError(t, w.StageAttachment(uploader.NewFile("data.zip", []byte("PK\x03\x04"))))
	assert.Len(t, w.View().Attachments, 1)
}

func TestWizardValidateOrderAndFocus(t *testing.T) {
	w := NewWizard(NewValidator(), nil)
	require.NoError(t, w.GoTo(StageFiles))

	errs := w.Validate()
	require.NotNil(t, errs)
	assert.Equal(t, []string{"title", "abstract", "keywords", "field", "manuscript", "authors"}, errs.Keys())
	assert.Equal(t, "title", w.Focus())
	assert.Equal(t, StageBasic, w.Stage())
}

func TestWizardValidateMovesToFilesForManuscript(t *testing.T) {
	w := filledWizard(t, NewValidator())
	w.ClearManuscript()

	errs := w.Validate()
	require.NotNil(t, errs)
	assert.Equal(t, []string{"manuscript"}, errs.Keys())
	assert.Equal(t, StageFiles, w.Stage())
}

func TestWizardBlankKeywordsFail(t *testing.T) {
	w := filledWizard(t, NewValidator())
	w.Patch(models.FormPatch{Keywords: strPtr(" , ,")})

	errs := w.Validate()
	require.NotNil(t, errs)
	assert.Equal(t, "keywords", errs.First())
}

func TestWizardEditModeSkipsManuscript(t *testing.T) {
	a := models.Article{
		ID:              "art-1",
		Title:           "IoT",
		Abstract:        "Meshes",
		Keywords:        []string{"iot", "sensors"},
		Field:           &models.Ref{ID: "f1"},
		SecondaryFields: []models.Ref{{ID: "f1"}, {ID: "f2"}},
		Authors:         []models.ArticleAuthor{{FullName: "A", Email: "a@x.io"}},
	}
	w := NewEditWizard(NewValidator(), nil, a)

	assert.Nil(t, w.Validate())
	form := w.Form()
	assert.Equal(t, "iot, sensors", form.Keywords)
	assert.Equal(t, []string{"f2"}, form.SecondaryFields)
	assert.Equal(t, ModeEdit, w.Mode())
	assert.Equal(t, "art-1", w.ArticleID())
}

func TestWizardSnapshotRestoreRoundTrip(t *testing.T) {
	w := filledWizard(t, NewValidator())
	w.Patch(models.FormPatch{ArticleLanguage: strPtr("en")})
	snap := w.Snapshot()

	restored := NewWizard(NewValidator(), nil)
	saved := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	restored.Restore(models.Draft{Snapshot: snap, SavedAt: saved})

	assert.Equal(t, snap, restored.Snapshot())
	assert.Nil(t, restored.Manuscript())
	require.NotNil(t, restored.LastSavedAt())
	assert.True(t, restored.LastSavedAt().Equal(saved))
}

func TestWizardReset(t *testing.T) {
	w := filledWizard(t, NewValidator())
	require.NoError(t, w.Next())
	w.Reset()

	assert.Equal(t, StageBasic, w.Stage())
	assert.True(t, w.Snapshot().Empty())
	assert.Nil(t, w.Manuscript())
	assert.Equal(t, DefaultLanguage, w.Form().ArticleLanguage)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"iot", "sensor networks"}, SplitKeywords(" iot ,, sensor networks ,"))
	assert.Empty(t, SplitKeywords(""))
}

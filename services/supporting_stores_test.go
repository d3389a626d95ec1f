package services

import (
	"net/http"
	"testing"
	"time"

	"journal-desk/models"
	"journal-desk/notify"
	"journal-desk/uploader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreKeepsOneActivePerCategory(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})

	var first *models.ArticleFile
	for i := 0; i < 3; i++ {
		file, err := f.desk.Files.UploadAndRegister(f.ctx, id, uploader.NewFile("paper.pdf", pdfBytes), models.FileManuscript, 1)
		require.NoError(t, err)
		if first == nil {
			first = file
		}
		assert.Equal(t, 1, f.desk.Files.ActiveCount(id, models.FileManuscript))
	}
	_, err := f.desk.Files.UploadAndRegister(f.ctx, id, uploader.NewFile("data.zip", []byte("PK\x03\x04")), models.FileSupplementary, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.desk.Files.ActiveCount(id, models.FileSupplementary))

	_, err = f.desk.Files.SetActive(f.ctx, first.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, f.desk.Files.ActiveCount(id, models.FileManuscript))
	for _, file := range f.desk.Files.Files() {
		if file.FileCategory == models.FileManuscript {
			assert.Equal(t, file.ID == first.ID, file.IsActive, file.ID)
		}
	}

	listed, err := f.desk.Files.List(f.ctx, id, models.FileListParams{FileCategory: models.FileManuscript})
	require.NoError(t, err)
	assert.Len(t, listed, 3)
	assert.Equal(t, 1, f.desk.Files.ActiveCount(id, models.FileManuscript))
}

func TestFileStoreDeactivateAndDelete(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})
	file, err := f.desk.Files.UploadAndRegister(f.ctx, id, uploader.NewFile("paper.pdf", pdfBytes), models.FileManuscript, 1)
	require.NoError(t, err)

	_, err = f.desk.Files.SetActive(f.ctx, file.ID, false)
	require.NoError(t, err)
	assert.Zero(t, f.desk.Files.ActiveCount(id, models.FileManuscript))
	assert.Contains(t, messages(f.desk.Notices.Drain(), notify.LevelSuccess), "File deactivated successfully")

	require.NoError(t, f.desk.Files.Delete(f.ctx, file.ID))
	assert.Empty(t, f.desk.Files.Files())
}

func TestIssueDeleteRefusesPublishedWithoutCall(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedIssue(models.Issue{Title: "Vol 1", IsPublished: true})
	_, err := f.desk.Issues.List(f.ctx)
	require.NoError(t, err)

	err = f.desk.Issues.Delete(f.ctx, id)
	var opErr *models.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Cannot delete a published issue", opErr.Message)
	assert.ErrorIs(t, err, models.ErrPublishedIssue)
	assert.Zero(t, f.backend.Calls(http.MethodDelete, "/issues/:id"))
}

func TestIssueDeleteSurfacesBackendMessage(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedIssue(models.Issue{Title: "Vol 1", IsPublished: true})

	err := f.desk.Issues.Delete(f.ctx, id)
	var opErr *models.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Cannot delete published issue", opErr.Message)
	assert.Equal(t, "Cannot delete published issue", f.desk.UI.Err(OpDeleteIssue))
}

func TestIssueDeleteHidesServerErrors(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedIssue(models.Issue{Title: "Vol 1"})
	f.backend.Fail(http.MethodDelete, "/issues/:id", http.StatusInternalServerError, "stack trace")

	err := f.desk.Issues.Delete(f.ctx, id)
	require.Error(t, err)
	assert.Equal(t, "Failed to delete issue", err.Error())
}

func TestIssueArticles(t *testing.T) {
	f := newFixture(t)
	issue, err := f.desk.Issues.Create(f.ctx, models.IssueInput{Title: "Vol 2", VolumeNumber: 2, IssueNumber: 1})
	require.NoError(t, err)

	updated, err := f.desk.Issues.AddArticle(f.ctx, issue.ID, "art-1")
	require.NoError(t, err)
	assert.Len(t, updated.Articles, 1)
	updated, err = f.desk.Issues.RemoveArticle(f.ctx, issue.ID, "art-1")
	require.NoError(t, err)
	assert.Empty(t, updated.Articles)

	published, err := f.desk.Issues.Publish(f.ctx, issue.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestFieldSelfParentRejectedBeforeRequest(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedField(models.Field{Name: "Computer Science", Code: "CS", Level: 1})

	_, err := f.desk.Fields.Update(f.ctx, id, models.FieldInput{Name: "Computer Science", Code: "CS", Parent: id})
	assert.ErrorIs(t, err, models.ErrFieldSelfParent)
	assert.Zero(t, f.backend.TotalCalls())
}

func TestFieldLevelDerivedFromParent(t *testing.T) {
	f := newFixture(t)
	parent := f.backend.SeedField(models.Field{Name: "Computer Science", Code: "CS", Level: 1, IsActive: true})

	child, err := f.desk.Fields.Create(f.ctx, models.FieldInput{Name: "Networks", Code: "CS.NET", Parent: parent, Level: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, child.Level)
	assert.Equal(t, 1, f.backend.Calls(http.MethodGet, "/fields/:id"))
	assert.Equal(t, "Computer Science", f.desk.Fields.Name(parent))

	root, err := f.desk.Fields.Create(f.ctx, models.FieldInput{Name: "Biology", Code: "BIO"})
	require.NoError(t, err)
	assert.Equal(t, 1, root.Level)
}

func TestFieldCreateValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.desk.Fields.Create(f.ctx, models.FieldInput{Name: "Networks"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code is required", verr.Fields.Get("code"))
	assert.Zero(t, f.backend.TotalCalls())
}

func TestFieldToggleStatus(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedField(models.Field{Name: "CS", Code: "CS", Level: 1, IsActive: true})
	_, err := f.desk.Fields.List(f.ctx, models.FieldListParams{})
	require.NoError(t, err)

	toggled, err := f.desk.Fields.ToggleStatus(f.ctx, id)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.False(t, f.desk.Fields.Fields()[0].IsActive)
	assert.Contains(t, messages(f.desk.Notices.Drain(), notify.LevelSuccess), "Field deactivated successfully")
}

func TestEmailDirectoryCachesAnswers(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount("a@x.io")
	dir := NewEmailDirectory(f.backend.Client(), time.Minute)

	assert.True(t, dir.EmailExists(f.ctx, "A@x.io"))
	assert.True(t, dir.EmailExists(f.ctx, "a@x.io "))
	assert.False(t, dir.EmailExists(f.ctx, "b@x.io"))
	assert.False(t, dir.EmailExists(f.ctx, ""))
	assert.Equal(t, 2, f.backend.Calls(http.MethodPost, "/auth/check-email"))
}

func TestEmailDirectoryDoesNotCacheFailures(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount("a@x.io")
	dir := NewEmailDirectory(f.backend.Client(), time.Minute)

	f.backend.Fail(http.MethodPost, "/auth/check-email", http.StatusInternalServerError, "down")
	assert.False(t, dir.EmailExists(f.ctx, "a@x.io"))
	f.backend.Recover(http.MethodPost, "/auth/check-email")
	assert.True(t, dir.EmailExists(f.ctx, "a@x.io"))
}

func TestAuthorHasAccountIsLookedUp(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount("a@x.io")

	registered, err := f.desk.Authors.Create(f.ctx, models.AuthorInput{FullName: "A", Email: "a@x.io", ArticleID: "art-1"})
	require.NoError(t, err)
	assert.True(t, registered.HasAccount)

	guest, err := f.desk.Authors.Create(f.ctx, models.AuthorInput{FullName: "B", Email: "b@x.io", ArticleID: "art-1"})
	require.NoError(t, err)
	assert.False(t, guest.HasAccount)

	authors, err := f.desk.Authors.ListByArticle(f.ctx, "art-1")
	require.NoError(t, err)
	assert.Len(t, authors, 2)
}

func TestAuthorInvalidEmailMakesNoCall(t *testing.T) {
	f := newFixture(t)
	_, err := f.desk.Authors.Create(f.ctx, models.AuthorInput{FullName: "A", Email: "not-an-email"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Fields.Has("authorEmail"))
	assert.Zero(t, f.backend.TotalCalls())
}

func TestReviewInviteAndLifecycle(t *testing.T) {
	f := newFixture(t)
	created, err := f.desk.Reviews.Invite(f.ctx, "art-1", []models.ReviewerAssignment{{ReviewerID: "r1"}, {ReviewerID: "r2"}})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Contains(t, messages(f.desk.Notices.Drain(), notify.LevelSuccess), "2 review invitations sent successfully")
	assert.Len(t, f.desk.Reviews.Reviews(), 2)

	accepted, err := f.desk.Reviews.Accept(f.ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewAccepted, accepted.Status)

	done, err := f.desk.Reviews.Complete(f.ctx, created[0].ID, models.CompleteReviewRequest{Recommendation: models.RecommendMinorRevision})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewCompleted, done.Status)

	declined, err := f.desk.Reviews.Decline(f.ctx, created[1].ID, "conflict of interest")
	require.NoError(t, err)
	assert.Equal(t, "conflict of interest", declined.DeclineReason)

	listed, err := f.desk.Reviews.List(f.ctx, models.ReviewListParams{ArticleID: "art-1", Status: models.ReviewCompleted})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	require.NoError(t, f.desk.Reviews.SendReminder(f.ctx, created[1].ID))
}

func TestDiscussionMessagesOnlyGrow(t *testing.T) {
	f := newFixture(t)
	d, err := f.desk.Discussions.Create(f.ctx, models.DiscussionInput{ArticleID: "art-1", Subject: "Figures", Message: "Please check fig 2"})
	require.NoError(t, err)
	_, err = f.desk.Discussions.Get(f.ctx, d.ID)
	require.NoError(t, err)

	updated, err := f.desk.Discussions.AddMessage(f.ctx, d.ID, models.DiscussionMessageRequest{Content: "Fixed"})
	require.NoError(t, err)
	assert.Len(t, updated.Messages, 2)

	read, err := f.desk.Discussions.MarkRead(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, read.Messages, 2)
	assert.NotEmpty(t, read.Messages[0].ReadBy)
}

func TestAppendMessagesKeepsKnownLog(t *testing.T) {
	now := time.Now()
	known := []models.DiscussionMessage{{Content: "one", Timestamp: now}, {Content: "two", Timestamp: now}}
	fresh := []models.DiscussionMessage{{Content: "one", Timestamp: now, ReadBy: []models.ReadReceipt{{UserID: "u1"}}}}

	merged := appendMessages(known, fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, "two", merged[1].Content)
	assert.Len(t, merged[0].ReadBy, 1)

	merged = appendMessages(merged, append(fresh, known[1], models.DiscussionMessage{Content: "three"}))
	assert.Len(t, merged, 3)
	assert.Equal(t, "three", merged[2].Content)
}

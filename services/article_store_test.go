package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"journal-desk/models"
	"journal-desk/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleListPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.backend.SeedArticle(models.Article{Title: fmt.Sprintf("Article %d", i)})
	}

	items, page, err := f.desk.Articles.List(f.ctx, models.ArticleListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 12, Pages: 2}, page)
	assert.Len(t, f.desk.Articles.Articles(), 10)
	assert.False(t, f.desk.UI.Loading(OpArticles))
	assert.Equal(t, "Bearer token-u1", f.backend.LastAuthorization())
}

func TestArticleStatusAliasIsNormalized(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "Legacy", Status: "revisions_required"})

	a, err := f.desk.Articles.GetByID(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, a.Status)
}

func TestArticleStatusHistoryOnlyGrows(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT", StatusHistory: []models.StatusHistory{{ID: "h0", Status: models.StatusSubmitted}}})

	_, err := f.desk.Articles.GetByID(f.ctx, id)
	require.NoError(t, err)
	_, err = f.desk.Articles.ChangeStatus(f.ctx, id, models.StatusUnderReview, "")
	require.NoError(t, err)
	_, err = f.desk.Articles.ChangeStatus(f.ctx, id, models.StatusRevisionRequested, "fix figures")
	require.NoError(t, err)

	open := f.desk.Articles.Article()
	require.NotNil(t, open)
	var statuses []models.ArticleStatus
	for _, h := range open.StatusHistory {
		statuses = append(statuses, h.Status)
	}
	assert.Equal(t, []models.ArticleStatus{models.StatusSubmitted, models.StatusUnderReview, models.StatusRevisionRequested}, statuses)
	assert.Equal(t, "fix figures", open.StatusHistory[2].Reason)
	assert.Contains(t, messages(f.desk.Notices.Drain(), notify.LevelSuccess), "Article status changed to revision_requested")
}

func TestArticleMutationRefreshesLastList(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})

	_, _, err := f.desk.Articles.List(f.ctx, models.ArticleListParams{Page: 1, Limit: 10, Status: models.StatusSubmitted})
	require.NoError(t, err)
	require.Len(t, f.desk.Articles.Articles(), 1)

	_, err = f.desk.Articles.ChangeStatus(f.ctx, id, models.StatusUnderReview, "")
	require.NoError(t, err)

	assert.Equal(t, 2, f.backend.Calls(http.MethodGet, "/articles"))
	assert.False(t, f.desk.Articles.Stale())
	assert.Empty(t, f.desk.Articles.Articles(), "refetch with the submitted filter drops the moved article")
}

func TestArticleMutationWithoutListStaysStale(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})

	_, err := f.desk.Articles.AssignEditor(f.ctx, id, "editor-1")
	require.NoError(t, err)

	assert.True(t, f.desk.Articles.Stale())
	assert.Zero(t, f.backend.Calls(http.MethodGet, "/articles"))
}

func TestArticleFailedRefreshKeepsStaleUntilList(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})
	_, _, err := f.desk.Articles.List(f.ctx, models.ArticleListParams{Page: 1, Limit: 10})
	require.NoError(t, err)

	f.backend.Fail(http.MethodGet, "/articles", http.StatusInternalServerError, "db down")
	_, err = f.desk.Articles.ChangeStatus(f.ctx, id, models.StatusUnderReview, "")
	require.NoError(t, err)
	assert.True(t, f.desk.Articles.Stale())
	assert.Equal(t, models.StatusUnderReview, f.desk.Articles.Articles()[0].Status)

	f.backend.Recover(http.MethodGet, "/articles")
	_, _, err = f.desk.Articles.List(f.ctx, models.ArticleListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.False(t, f.desk.Articles.Stale())
}

func TestArticleFailureSetsErrorAndToast(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(http.MethodGet, "/articles/:id", http.StatusInternalServerError, "boom")

	_, err := f.desk.Articles.GetByID(f.ctx, "art-1")
	var opErr *models.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpArticle, opErr.Op)
	assert.Equal(t, "Failed to load article details", opErr.Message)
	assert.Equal(t, "Failed to load article details", f.desk.UI.Err(OpArticle))
	assert.False(t, f.desk.UI.Loading(OpArticle))
	assert.Equal(t, []string{"Failed to load article details"}, messages(f.desk.Notices.Drain(), notify.LevelError))
}

func TestArticleUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(http.MethodGet, "/articles", http.StatusUnauthorized, "Unauthorized - no token provided")

	_, _, err := f.desk.Articles.List(f.ctx, models.ArticleListParams{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestArticleGetByIDLatestWins(t *testing.T) {
	f := newFixture(t)
	a := f.backend.SeedArticle(models.Article{Title: "A"})
	b := f.backend.SeedArticle(models.Article{Title: "B"})

	gate := f.backend.Hold(http.MethodGet, "/articles/:id")
	done := make(chan error, 1)
	go func() {
		_, err := f.desk.Articles.GetByID(f.ctx, a)
		done <- err
	}()
	<-gate.Arrived()
	assert.True(t, f.desk.UI.Loading(OpArticle))

	got, err := f.desk.Articles.GetByID(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)

	gate.Release()
	assert.ErrorIs(t, <-done, models.ErrSuperseded)
	require.NotNil(t, f.desk.Articles.Article())
	assert.Equal(t, "B", f.desk.Articles.Article().Title)
	assert.False(t, f.desk.UI.Loading(OpArticle))
}

func TestSetOpenIfChecksUnderLock(t *testing.T) {
	c := newCollection(func(a models.Article) string { return a.ID })
	c.setOpen(models.Article{ID: "b", Title: "B"})

	var lockedDuringCheck bool
	_, stored := c.setOpenIf(models.Article{ID: "a", Title: "A"}, func() bool {
		lockedDuringCheck = !c.mu.TryLock()
		return false
	})
	assert.True(t, lockedDuringCheck)
	assert.False(t, stored)
	assert.Equal(t, "B", c.open().Title)

	got, stored := c.setOpenIf(models.Article{ID: "a", Title: "A"}, func() bool { return true })
	assert.True(t, stored)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "A", c.open().Title)
}

func TestArticleDeleteClearsOpenSlot(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT"})
	_, err := f.desk.Articles.GetByID(f.ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.desk.Articles.Delete(f.ctx, id))
	assert.Nil(t, f.desk.Articles.Article())
	assert.Zero(t, f.backend.ArticleCount())
}

func TestArticlePublishForwardsPagesUnchecked(t *testing.T) {
	f := newFixture(t)
	id := f.backend.SeedArticle(models.Article{Title: "IoT", Status: models.StatusAccepted})
	start, end := 20, 10

	a, err := f.desk.Articles.Publish(f.ctx, id, models.PublishRequest{DOI: "10.1/x", PageStart: &start, PageEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, a.Status)
	require.NotNil(t, a.PageStart)
	assert.Equal(t, 20, *a.PageStart)
}

func TestArticleStats(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedArticle(models.Article{Title: "A", Status: models.StatusSubmitted})
	f.backend.SeedArticle(models.Article{Title: "B", Status: models.StatusPublished})

	stats, err := f.desk.Articles.FetchStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["total"])
	assert.Equal(t, 1, stats["published"])
}

// emptyCreateAPI answers every call successfully without a body.
type emptyCreateAPI struct{}

func (emptyCreateAPI) Get(context.Context, string, url.Values, any) (*models.Pagination, error) {
	return nil, nil
}
func (emptyCreateAPI) Post(context.Context, string, any, any) error  { return nil }
func (emptyCreateAPI) Put(context.Context, string, any, any) error   { return nil }
func (emptyCreateAPI) Patch(context.Context, string, any, any) error { return nil }
func (emptyCreateAPI) Delete(context.Context, string, any) error     { return nil }

func TestArticleCreateWithoutIDFails(t *testing.T) {
	store := NewArticleStore(emptyCreateAPI{}, NewUIState(), notify.NewBuffer(10))

	id, err := store.Create(context.Background(), models.ArticleInput{Title: "IoT"})
	assert.Empty(t, id)
	var opErr *models.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "Failed to create article", opErr.Message)
	assert.Empty(t, store.Articles())
}

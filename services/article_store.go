package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"journal-desk/models"
	"journal-desk/notify"
)

// Operation keys of the article store.
const (
	OpArticles        = "articles"
	OpArticle         = "article"
	OpArticleStats    = "articleStats"
	OpCreateArticle   = "createArticle"
	OpUpdateArticle   = "updateArticle"
	OpDeleteArticle   = "deleteArticle"
	OpChangeStatus    = "changeStatus"
	OpAssignEditor    = "assignEditor"
	OpPublishArticle  = "publishArticle"
	OpUpdateThumbnail = "updateThumbnail"
)

// ArticleStore holds the article collection, the article open for detail and
// the statistics. After a successful mutation the collection is reconciled
// locally, marked stale, and re-fetched with the last list parameters; a
// failed re-fetch leaves it stale until the next successful List.
type ArticleStore struct {
	storeBase
	articles *collection[models.Article]

	mu         sync.RWMutex
	pagination models.Pagination
	stats      models.ArticleStats
	lastParams *models.ArticleListParams
	stale      bool

	// latest is the token of the newest GetByID issued.
	latest atomic.Uint64
}

func NewArticleStore(api RESTClient, ui *UIState, notifier notify.Notifier) *ArticleStore {
	articles := newCollection(func(a models.Article) string { return a.ID })
	articles.merge = func(known, fresh models.Article) models.Article {
		fresh.StatusHistory = models.MergeHistory(known.StatusHistory, fresh.StatusHistory)
		return fresh
	}
	return &ArticleStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "ArticleStore"},
		articles:  articles,
	}
}

func (s *ArticleStore) Articles() []models.Article { return s.articles.all() }

// Article returns a copy of the open article, or nil.
func (s *ArticleStore) Article() *models.Article { return s.articles.open() }

func (s *ArticleStore) Pagination() models.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

func (s *ArticleStore) Stats() models.ArticleStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.ArticleStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// Stale reports whether the collection carries local edits the server has
// not confirmed through a list call.
func (s *ArticleStore) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// List replaces the collection and pagination with the server's page.
func (s *ArticleStore) List(ctx context.Context, params models.ArticleListParams) ([]models.Article, models.Pagination, error) {
	var out []models.Article
	var page *models.Pagination
	err := s.do(OpArticles, "Failed to load articles", func() error {
		var err error
		page, err = s.api.Get(ctx, "/articles", params.Values(), &out)
		return err
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}

	s.apply(params, out, page)
	return out, s.Pagination(), nil
}

func (s *ArticleStore) apply(params models.ArticleListParams, items []models.Article, page *models.Pagination) {
	s.articles.replaceAll(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if page != nil {
		s.pagination = *page
	} else {
		s.pagination = models.Pagination{Page: params.Page, Limit: params.Limit, Total: len(items), Pages: 1}
	}
	s.lastParams = &params
	s.stale = false
}

// GetByID loads one article into the open slot. A response that arrives
// after a newer GetByID was issued is dropped and reported as
// models.ErrSuperseded.
func (s *ArticleStore) GetByID(ctx context.Context, id string) (*models.Article, error) {
	token := s.latest.Add(1)

	s.ui.Begin(OpArticle)
	defer s.ui.End(OpArticle)

	var a models.Article
	_, err := s.api.Get(ctx, "/articles/"+id, nil, &a)
	current := func() bool { return token == s.latest.Load() }
	if !current() {
		log.Printf("[ArticleStore] dropped response for %s: superseded", id)
		return nil, models.ErrSuperseded
	}
	if err != nil {
		return nil, s.fail(OpArticle, "Failed to load article details", err)
	}

	stored, ok := s.articles.setOpenIf(a, current)
	if !ok {
		log.Printf("[ArticleStore] dropped response for %s: superseded", id)
		return nil, models.ErrSuperseded
	}
	return &stored, nil
}

func (s *ArticleStore) FetchStats(ctx context.Context) (models.ArticleStats, error) {
	var stats models.ArticleStats
	err := s.do(OpArticleStats, "Failed to load article statistics", func() error {
		_, err := s.api.Get(ctx, "/articles/stats", nil, &stats)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return s.Stats(), nil
}

// Create submits a new article and returns its id.
func (s *ArticleStore) Create(ctx context.Context, in models.ArticleInput) (string, error) {
	var created models.Article
	err := s.do(OpCreateArticle, "Failed to create article", func() error {
		if err := s.api.Post(ctx, "/articles", in, &created); err != nil {
			return err
		}
		if created.ID == "" {
			return errors.New("response carried no article id")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.articles.prepend(created)
	s.success("Article created successfully")
	s.refresh(ctx)
	return created.ID, nil
}

func (s *ArticleStore) Update(ctx context.Context, id string, in models.ArticleInput) (*models.Article, error) {
	return s.mutate(ctx, OpUpdateArticle, "Failed to update article", "Article updated successfully", func(out *models.Article) error {
		return s.api.Put(ctx, "/articles/"+id+"/update", in, out)
	})
}

// Delete removes the article. If it was open the slot is cleared.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteArticle, "Failed to delete article", func() error {
		return s.api.Delete(ctx, "/articles/"+id, nil)
	})
	if err != nil {
		return err
	}

	s.articles.remove(id)
	s.success("Article deleted successfully")
	s.refresh(ctx)
	return nil
}

// ChangeStatus requests any status; transition rules belong to the backend.
func (s *ArticleStore) ChangeStatus(ctx context.Context, id string, status models.ArticleStatus, reason string) (*models.Article, error) {
	req := models.ChangeStatusRequest{Status: status, Reason: reason}
	return s.mutate(ctx, OpChangeStatus, "Failed to change article status", fmt.Sprintf("Article status changed to %s", status), func(out *models.Article) error {
		return s.api.Patch(ctx, "/articles/"+id+"/status", req, out)
	})
}

func (s *ArticleStore) AssignEditor(ctx context.Context, id, editorID string) (*models.Article, error) {
	req := models.AssignEditorRequest{EditorID: editorID}
	return s.mutate(ctx, OpAssignEditor, "Failed to assign editor", "Editor assigned successfully", func(out *models.Article) error {
		return s.api.Put(ctx, "/articles/"+id+"/assign-editor", req, out)
	})
}

func (s *ArticleStore) Publish(ctx context.Context, id string, req models.PublishRequest) (*models.Article, error) {
	return s.mutate(ctx, OpPublishArticle, "Failed to publish article", "Article published successfully", func(out *models.Article) error {
		return s.api.Put(ctx, "/articles/"+id+"/publish", req, out)
	})
}

func (s *ArticleStore) SetThumbnail(ctx context.Context, id, url string) (*models.Article, error) {
	req := models.ThumbnailRequest{Thumbnail: url}
	return s.mutate(ctx, OpUpdateThumbnail, "Failed to update thumbnail", "Thumbnail updated successfully", func(out *models.Article) error {
		return s.api.Put(ctx, "/articles/"+id+"/thumbnail", req, out)
	})
}

// Reset drops all cached state, e.g. on logout.
func (s *ArticleStore) Reset() {
	s.articles.reset()
	s.latest.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagination = models.Pagination{}
	s.stats = nil
	s.lastParams = nil
	s.stale = false
}

// mutate runs a call that answers with the updated article and reconciles it.
func (s *ArticleStore) mutate(ctx context.Context, op, failMsg, okMsg string, call func(out *models.Article) error) (*models.Article, error) {
	var updated models.Article
	if err := s.do(op, failMsg, func() error { return call(&updated) }); err != nil {
		return nil, err
	}

	stored := s.articles.update(updated)
	s.success(okMsg)
	s.refresh(ctx)
	return &stored, nil
}

// refresh re-fetches the last listed page. Without a prior List there is no
// page to re-fetch and the local edits stay marked stale.
func (s *ArticleStore) refresh(ctx context.Context) {
	s.mu.Lock()
	s.stale = true
	params := s.lastParams
	s.mu.Unlock()
	if params == nil {
		return
	}

	s.ui.Begin(OpArticles)
	defer s.ui.End(OpArticles)

	var out []models.Article
	page, err := s.api.Get(ctx, "/articles", params.Values(), &out)
	if err != nil {
		log.Printf("[ArticleStore] refresh after mutation failed, collection stale: %v", err)
		return
	}
	s.apply(*params, out, page)
}

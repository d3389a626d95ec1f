package services

import (
	"context"
	"log"
	"strings"
	"time"

	"journal-desk/models"
	"journal-desk/notify"

	"github.com/patrickmn/go-cache"
)

const (
	OpAuthors      = "authors"
	OpCreateAuthor = "createAuthor"
	OpUpdateAuthor = "updateAuthor"
	OpDeleteAuthor = "deleteAuthor"
)

// AccountDirectory answers whether an email belongs to a registered user.
type AccountDirectory interface {
	EmailExists(ctx context.Context, email string) bool
}

// AuthorStore manages article authors. HasAccount is always looked up, never
// taken from the caller.
type AuthorStore struct {
	storeBase
	authors   *collection[models.ArticleAuthor]
	validator *Validator
	accounts  AccountDirectory
}

func NewAuthorStore(api RESTClient, v *Validator, accounts AccountDirectory, ui *UIState, notifier notify.Notifier) *AuthorStore {
	return &AuthorStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "AuthorStore"},
		authors:   newCollection(func(a models.ArticleAuthor) string { return a.ID }),
		validator: v,
		accounts:  accounts,
	}
}

func (s *AuthorStore) Authors() []models.ArticleAuthor { return s.authors.all() }

func (s *AuthorStore) ListByArticle(ctx context.Context, articleID string) ([]models.ArticleAuthor, error) {
	var out []models.ArticleAuthor
	err := s.do(OpAuthors, "Failed to load article authors", func() error {
		_, err := s.api.Get(ctx, "/article-authors/"+articleID+"/authors", nil, &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.authors.replaceAll(out)
	return out, nil
}

func (s *AuthorStore) List(ctx context.Context, params models.AuthorListParams) ([]models.ArticleAuthor, error) {
	var out []models.ArticleAuthor
	err := s.do(OpAuthors, "Failed to load authors", func() error {
		_, err := s.api.Get(ctx, "/article-authors", params.Values(), &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.authors.replaceAll(out)
	return out, nil
}

func (s *AuthorStore) Get(ctx context.Context, id string) (*models.ArticleAuthor, error) {
	var a models.ArticleAuthor
	err := s.do(OpAuthors, "Failed to load author", func() error {
		_, err := s.api.Get(ctx, "/article-authors/"+id, nil, &a)
		return err
	})
	if err != nil {
		return nil, err
	}
	stored := s.authors.setOpen(a)
	return &stored, nil
}

func (s *AuthorStore) Create(ctx context.Context, in models.AuthorInput) (*models.ArticleAuthor, error) {
	if errs := s.validator.Check(in); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	payload := in.Author()
	payload.HasAccount = s.accounts.EmailExists(ctx, in.Email)

	var created models.ArticleAuthor
	err := s.do(OpCreateAuthor, "Failed to add author", func() error {
		return s.api.Post(ctx, "/article-authors", payload, &created)
	})
	if err != nil {
		return nil, err
	}
	s.authors.prepend(created)
	s.success("Author added successfully")
	return &created, nil
}

func (s *AuthorStore) Update(ctx context.Context, id string, in models.AuthorInput) (*models.ArticleAuthor, error) {
	if errs := s.validator.Check(in); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	payload := in.Author()
	payload.HasAccount = s.accounts.EmailExists(ctx, in.Email)

	var updated models.ArticleAuthor
	err := s.do(OpUpdateAuthor, "Failed to update author", func() error {
		return s.api.Put(ctx, "/article-authors/"+id, payload, &updated)
	})
	if err != nil {
		return nil, err
	}
	stored := s.authors.update(updated)
	s.success("Author updated successfully")
	return &stored, nil
}

func (s *AuthorStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteAuthor, "Failed to remove author", func() error {
		return s.api.Delete(ctx, "/article-authors/"+id, nil)
	})
	if err != nil {
		return err
	}
	s.authors.remove(id)
	s.success("Author removed successfully")
	return nil
}

// EmailDirectory checks emails against /auth/check-email and caches answers.
// A failed lookup counts as "no account" and is not cached.
type EmailDirectory struct {
	api   RESTClient
	cache *cache.Cache
}

func NewEmailDirectory(api RESTClient, ttl time.Duration) *EmailDirectory {
	return &EmailDirectory{api: api, cache: cache.New(ttl, 2*ttl)}
}

func (d *EmailDirectory) EmailExists(ctx context.Context, email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return false
	}
	if v, ok := d.cache.Get(key); ok {
		return v.(bool)
	}

	var res models.CheckEmailResponse
	if err := d.api.Post(ctx, "/auth/check-email", models.CheckEmailRequest{Email: key}, &res); err != nil {
		log.Printf("[EmailDirectory] check %s failed: %v", key, err)
		return false
	}
	d.cache.SetDefault(key, res.Exists)
	return res.Exists
}

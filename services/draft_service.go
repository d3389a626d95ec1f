package services

import (
	"context"
	"log"
	"time"

	"journal-desk/models"
	"journal-desk/repositories"
)

// DraftService saves and restores wizard drafts.
type DraftService struct {
	repo repositories.DraftRepository
	now  func() time.Time
}

func NewDraftService(repo repositories.DraftRepository) *DraftService {
	return &DraftService{repo: repo, now: time.Now}
}

// Save stores the snapshot under key, replacing any earlier one.
func (s *DraftService) Save(ctx context.Context, key models.DraftKey, snap models.DraftSnapshot) (*models.Draft, error) {
	draft := &models.Draft{
		Key:      key.String(),
		Owner:    key.Owner,
		Snapshot: snap,
		SavedAt:  s.now(),
	}
	if err := s.repo.Save(ctx, draft); err != nil {
		log.Printf("[DraftService] save %s failed: %v", draft.Key, err)
		return nil, err
	}
	return draft, nil
}

// Load returns models.ErrDraftNotFound when nothing is stored under key.
func (s *DraftService) Load(ctx context.Context, key models.DraftKey) (*models.Draft, error) {
	return s.repo.Get(ctx, key.String())
}

func (s *DraftService) Clear(ctx context.Context, key models.DraftKey) error {
	if err := s.repo.Delete(ctx, key.String()); err != nil {
		log.Printf("[DraftService] clear %s failed: %v", key, err)
		return err
	}
	return nil
}

func (s *DraftService) List(ctx context.Context, owner string) ([]models.Draft, error) {
	return s.repo.ListByOwner(ctx, owner)
}

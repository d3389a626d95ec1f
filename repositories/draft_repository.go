package repositories

import (
	"context"
	"errors"

	"journal-desk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftRepository persists wizard drafts by key. Get returns
// models.ErrDraftNotFound when nothing is stored.
type DraftRepository interface {
	Save(ctx context.Context, draft *models.Draft) error
	Get(ctx context.Context, key string) (*models.Draft, error)
	Delete(ctx context.Context, key string) error
	ListByOwner(ctx context.Context, owner string) ([]models.Draft, error)
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Save inserts the draft or overwrites the one stored under the same key.
func (r *draftRepository) Save(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "draft_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner", "snapshot", "saved_at", "updated_at"}),
		}).
		Create(draft).Error
}

func (r *draftRepository) Get(ctx context.Context, key string) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).Where("draft_key = ?", key).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("draft_key = ?", key).Delete(&models.Draft{}).Error
}

func (r *draftRepository) ListByOwner(ctx context.Context, owner string) ([]models.Draft, error) {
	var drafts []models.Draft
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("saved_at desc").
		Find(&drafts).Error
	return drafts, err
}

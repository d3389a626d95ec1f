package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"journal-desk/models"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "draft:"
	ownerKeyPrefix = "drafts:owner:"
)

type redisDraftRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDraftRepository stores drafts as JSON values. A zero ttl keeps them
// until cleared.
func NewRedisDraftRepository(rdb *redis.Client, ttl time.Duration) DraftRepository {
	return &redisDraftRepository{rdb: rdb, ttl: ttl}
}

func (r *redisDraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	now := time.Now()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	raw, err := json.Marshal(storedDraft{Draft: *draft, CreatedAt: draft.CreatedAt, UpdatedAt: draft.UpdatedAt})
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftKeyPrefix+draft.Key, raw, r.ttl)
		pipe.SAdd(ctx, ownerKeyPrefix+draft.Owner, draft.Key)
		return nil
	})
	return err
}

func (r *redisDraftRepository) Get(ctx context.Context, key string) (*models.Draft, error) {
	raw, err := r.rdb.Get(ctx, draftKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var stored storedDraft
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	draft := stored.Draft
	draft.CreatedAt = stored.CreatedAt
	draft.UpdatedAt = stored.UpdatedAt
	return &draft, nil
}

func (r *redisDraftRepository) Delete(ctx context.Context, key string) error {
	draft, err := r.Get(ctx, key)
	if errors.Is(err, models.ErrDraftNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, draftKeyPrefix+key)
		pipe.SRem(ctx, ownerKeyPrefix+draft.Owner, key)
		return nil
	})
	return err
}

// ListByOwner returns the owner's drafts, newest first. Keys whose value has
// expired are pruned from the owner index.
func (r *redisDraftRepository) ListByOwner(ctx context.Context, owner string) ([]models.Draft, error) {
	keys, err := r.rdb.SMembers(ctx, ownerKeyPrefix+owner).Result()
	if err != nil {
		return nil, err
	}

	drafts := make([]models.Draft, 0, len(keys))
	for _, key := range keys {
		draft, err := r.Get(ctx, key)
		if errors.Is(err, models.ErrDraftNotFound) {
			r.rdb.SRem(ctx, ownerKeyPrefix+owner, key)
			continue
		}
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}

	sort.Slice(drafts, func(i, j int) bool { return drafts[i].SavedAt.After(drafts[j].SavedAt) })
	return drafts, nil
}

// storedDraft keeps the timestamps that models.Draft hides from JSON.
type storedDraft struct {
	models.Draft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

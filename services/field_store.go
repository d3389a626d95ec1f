package services

import (
	"context"
	"fmt"
	"time"

	"journal-desk/models"
	"journal-desk/notify"

	"github.com/patrickmn/go-cache"
)

const (
	OpFields            = "fields"
	OpField             = "field"
	OpCreateField       = "createField"
	OpUpdateField       = "updateField"
	OpDeleteField       = "deleteField"
	OpToggleFieldStatus = "toggleFieldStatus"
)

// FieldStore manages the classification taxonomy. A field's level is always
// derived from its parent.
type FieldStore struct {
	storeBase
	fields    *collection[models.Field]
	validator *Validator
	names     *cache.Cache
}

func NewFieldStore(api RESTClient, v *Validator, ui *UIState, notifier notify.Notifier) *FieldStore {
	return &FieldStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "FieldStore"},
		fields:    newCollection(func(f models.Field) string { return f.ID }),
		validator: v,
		names:     cache.New(30*time.Minute, time.Hour),
	}
}

func (s *FieldStore) Fields() []models.Field { return s.fields.all() }

// Name returns the cached display name for a field id.
func (s *FieldStore) Name(id string) string {
	if v, ok := s.names.Get(id); ok {
		return v.(string)
	}
	return ""
}

func (s *FieldStore) remember(fields ...models.Field) {
	for _, f := range fields {
		s.names.SetDefault(f.ID, f.Name)
	}
}

func (s *FieldStore) List(ctx context.Context, params models.FieldListParams) ([]models.Field, error) {
	var out []models.Field
	err := s.do(OpFields, "Failed to load fields", func() error {
		_, err := s.api.Get(ctx, "/fields", params.Values(), &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.fields.replaceAll(out)
	s.remember(out...)
	return out, nil
}

func (s *FieldStore) Get(ctx context.Context, id string) (*models.Field, error) {
	var f models.Field
	err := s.do(OpField, "Failed to load field details", func() error {
		_, err := s.api.Get(ctx, "/fields/"+id, nil, &f)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.remember(f)
	stored := s.fields.setOpen(f)
	return &stored, nil
}

func (s *FieldStore) Create(ctx context.Context, in models.FieldInput) (*models.Field, error) {
	if errs := s.validator.Check(in); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	var created models.Field
	err := s.do(OpCreateField, "Failed to create field", func() error {
		level, err := s.levelFor(ctx, in.Parent)
		if err != nil {
			return err
		}
		in.Level = level
		return s.api.Post(ctx, "/fields", in, &created)
	})
	if err != nil {
		return nil, err
	}
	s.fields.prepend(created)
	s.remember(created)
	s.success("Field created successfully")
	return &created, nil
}

func (s *FieldStore) Update(ctx context.Context, id string, in models.FieldInput) (*models.Field, error) {
	if in.Parent != "" && in.Parent == id {
		return nil, s.fail(OpUpdateField, "A field cannot be its own parent", models.ErrFieldSelfParent)
	}
	if errs := s.validator.Check(in); errs != nil {
		return nil, &models.ValidationError{Fields: errs}
	}

	var updated models.Field
	err := s.do(OpUpdateField, "Failed to update field", func() error {
		level, err := s.levelFor(ctx, in.Parent)
		if err != nil {
			return err
		}
		in.Level = level
		return s.api.Put(ctx, "/fields/"+id, in, &updated)
	})
	if err != nil {
		return nil, err
	}
	stored := s.fields.update(updated)
	s.remember(stored)
	s.success("Field updated successfully")
	return &stored, nil
}

func (s *FieldStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteField, "Failed to delete field", func() error {
		return s.api.Delete(ctx, "/fields/"+id, nil)
	})
	if err != nil {
		return err
	}
	s.fields.remove(id)
	s.names.Delete(id)
	s.success("Field deleted successfully")
	return nil
}

func (s *FieldStore) ToggleStatus(ctx context.Context, id string) (*models.Field, error) {
	var updated models.Field
	err := s.do(OpToggleFieldStatus, "Failed to toggle field status", func() error {
		return s.api.Patch(ctx, "/fields/"+id+"/toggle-status", struct{}{}, &updated)
	})
	if err != nil {
		return nil, err
	}
	stored := s.fields.update(updated)

	state := "deactivated"
	if stored.IsActive {
		state = "activated"
	}
	s.success(fmt.Sprintf("Field %s successfully", state))
	return &stored, nil
}

// levelFor resolves the parent from the cache, or from the backend when it
// has not been listed yet.
func (s *FieldStore) levelFor(ctx context.Context, parentID string) (int, error) {
	if parentID == "" {
		return models.DeriveLevel(nil), nil
	}
	if parent, ok := s.fields.find(parentID); ok {
		return models.DeriveLevel(&parent), nil
	}
	var parent models.Field
	if _, err := s.api.Get(ctx, "/fields/"+parentID, nil, &parent); err != nil {
		return 0, fmt.Errorf("failed to resolve parent field %s: %w", parentID, err)
	}
	s.remember(parent)
	return models.DeriveLevel(&parent), nil
}

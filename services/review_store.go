package services

import (
	"context"
	"fmt"

	"journal-desk/models"
	"journal-desk/notify"
)

const (
	OpReviews               = "reviews"
	OpReview                = "review"
	OpCreateReview          = "createReview"
	OpCreateMultipleReviews = "createMultipleReviews"
	OpUpdateReview          = "updateReview"
	OpDeleteReview          = "deleteReview"
	OpAcceptReview          = "acceptReview"
	OpDeclineReview         = "declineReview"
	OpCompleteReview        = "completeReview"
	OpSendReminder          = "sendReminder"
)

// ReviewStore tracks review invitations: pending, then accepted or
// declined, then completed.
type ReviewStore struct {
	storeBase
	reviews *collection[models.Review]
}

func NewReviewStore(api RESTClient, ui *UIState, notifier notify.Notifier) *ReviewStore {
	return &ReviewStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "ReviewStore"},
		reviews:   newCollection(func(r models.Review) string { return r.ID }),
	}
}

func (s *ReviewStore) Reviews() []models.Review { return s.reviews.all() }

func (s *ReviewStore) List(ctx context.Context, params models.ReviewListParams) ([]models.Review, error) {
	var out []models.Review
	err := s.do(OpReviews, "Failed to load reviews", func() error {
		_, err := s.api.Get(ctx, "/reviews", params.Values(), &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.reviews.replaceAll(out)
	return out, nil
}

func (s *ReviewStore) Get(ctx context.Context, id string) (*models.Review, error) {
	var r models.Review
	err := s.do(OpReview, "Failed to load review details", func() error {
		_, err := s.api.Get(ctx, "/reviews/"+id, nil, &r)
		return err
	})
	if err != nil {
		return nil, err
	}
	stored := s.reviews.setOpen(r)
	return &stored, nil
}

func (s *ReviewStore) Create(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	var created models.Review
	err := s.do(OpCreateReview, "Failed to send review invitation", func() error {
		return s.api.Post(ctx, "/reviews", in, &created)
	})
	if err != nil {
		return nil, err
	}
	s.reviews.prepend(created)
	s.success("Review invitation sent successfully")
	return &created, nil
}

// Invite sends one invitation per reviewer in a single call.
func (s *ReviewStore) Invite(ctx context.Context, articleID string, reviewers []models.ReviewerAssignment) ([]models.Review, error) {
	var created []models.Review
	err := s.do(OpCreateMultipleReviews, "Failed to send review invitations", func() error {
		return s.api.Post(ctx, "/reviews/multiple", models.MultipleReviewRequest{ArticleID: articleID, Reviewers: reviewers}, &created)
	})
	if err != nil {
		return nil, err
	}
	for i := len(created) - 1; i >= 0; i-- {
		s.reviews.prepend(created[i])
	}
	s.success(fmt.Sprintf("%d review invitations sent successfully", len(created)))
	return created, nil
}

func (s *ReviewStore) Update(ctx context.Context, id string, in models.ReviewInput) (*models.Review, error) {
	return s.mutate(OpUpdateReview, "Failed to update review", "Review updated successfully", func(out *models.Review) error {
		return s.api.Put(ctx, "/reviews/"+id, in, out)
	})
}

func (s *ReviewStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteReview, "Failed to delete review", func() error {
		return s.api.Delete(ctx, "/reviews/"+id, nil)
	})
	if err != nil {
		return err
	}
	s.reviews.remove(id)
	s.success("Review deleted successfully")
	return nil
}

func (s *ReviewStore) Accept(ctx context.Context, id string) (*models.Review, error) {
	return s.mutate(OpAcceptReview, "Failed to accept review", "Review accepted successfully", func(out *models.Review) error {
		return s.api.Put(ctx, "/reviews/"+id+"/accept", struct{}{}, out)
	})
}

func (s *ReviewStore) Decline(ctx context.Context, id, reason string) (*models.Review, error) {
	return s.mutate(OpDeclineReview, "Failed to decline review", "Review declined successfully", func(out *models.Review) error {
		return s.api.Put(ctx, "/reviews/"+id+"/decline", models.DeclineReviewRequest{DeclineReason: reason}, out)
	})
}

func (s *ReviewStore) Complete(ctx context.Context, id string, req models.CompleteReviewRequest) (*models.Review, error) {
	return s.mutate(OpCompleteReview, "Failed to complete review", "Review completed successfully", func(out *models.Review) error {
		return s.api.Put(ctx, "/reviews/"+id+"/complete", req, out)
	})
}

func (s *ReviewStore) SendReminder(ctx context.Context, id string) error {
	err := s.do(OpSendReminder, "Failed to send reminder", func() error {
		return s.api.Post(ctx, "/reviews/"+id+"/reminder", struct{}{}, nil)
	})
	if err != nil {
		return err
	}
	s.success("Reminder sent successfully")
	return nil
}

func (s *ReviewStore) mutate(op, failMsg, okMsg string, call func(out *models.Review) error) (*models.Review, error) {
	var updated models.Review
	if err := s.do(op, failMsg, func() error { return call(&updated) }); err != nil {
		return nil, err
	}
	stored := s.reviews.update(updated)
	s.success(okMsg)
	return &stored, nil
}

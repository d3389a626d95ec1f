package services

import (
	"context"

	"journal-desk/models"
	"journal-desk/notify"
)

const (
	OpDiscussions        = "discussions"
	OpDiscussion         = "discussion"
	OpCreateDiscussion   = "createDiscussion"
	OpUpdateDiscussion   = "updateDiscussion"
	OpDeleteDiscussion   = "deleteDiscussion"
	OpAddMessage         = "addMessage"
	OpMarkMessagesAsRead = "markMessagesAsRead"
	OpAddParticipant     = "addParticipant"
	OpRemoveParticipant  = "removeParticipant"
)

// DiscussionStore keeps article discussions. Message logs only grow: a
// server copy never removes a message already seen.
type DiscussionStore struct {
	storeBase
	discussions *collection[models.Discussion]
}

func NewDiscussionStore(api RESTClient, ui *UIState, notifier notify.Notifier) *DiscussionStore {
	discussions := newCollection(func(d models.Discussion) string { return d.ID })
	discussions.merge = func(known, fresh models.Discussion) models.Discussion {
		fresh.Messages = appendMessages(known.Messages, fresh.Messages)
		return fresh
	}
	return &DiscussionStore{
		storeBase:   storeBase{api: api, ui: ui, notifier: notifier, name: "DiscussionStore"},
		discussions: discussions,
	}
}

// appendMessages keeps the known log and appends whatever the fresh copy
// holds beyond it. Read receipts on known messages are taken from fresh.
func appendMessages(known, fresh []models.DiscussionMessage) []models.DiscussionMessage {
	out := append([]models.DiscussionMessage(nil), known...)
	for i := range out {
		if i < len(fresh) && len(fresh[i].ReadBy) > len(out[i].ReadBy) {
			out[i].ReadBy = fresh[i].ReadBy
		}
	}
	if len(fresh) > len(known) {
		out = append(out, fresh[len(known):]...)
	}
	return out
}

func (s *DiscussionStore) Discussions() []models.Discussion { return s.discussions.all() }

func (s *DiscussionStore) Discussion() *models.Discussion { return s.discussions.open() }

func (s *DiscussionStore) ListByArticle(ctx context.Context, articleID string) ([]models.Discussion, error) {
	var out []models.Discussion
	err := s.do(OpDiscussions, "Failed to load discussions", func() error {
		_, err := s.api.Get(ctx, "/discussions/article/"+articleID, nil, &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.discussions.replaceAll(out)
	return out, nil
}

func (s *DiscussionStore) Get(ctx context.Context, id string) (*models.Discussion, error) {
	var d models.Discussion
	err := s.do(OpDiscussion, "Failed to load discussion details", func() error {
		_, err := s.api.Get(ctx, "/discussions/"+id, nil, &d)
		return err
	})
	if err != nil {
		return nil, err
	}
	stored := s.discussions.setOpen(d)
	return &stored, nil
}

func (s *DiscussionStore) Create(ctx context.Context, in models.DiscussionInput) (*models.Discussion, error) {
	var created models.Discussion
	err := s.do(OpCreateDiscussion, "Failed to create discussion", func() error {
		return s.api.Post(ctx, "/discussions", in, &created)
	})
	if err != nil {
		return nil, err
	}
	s.discussions.prepend(created)
	s.success("Discussion created successfully")
	return &created, nil
}

func (s *DiscussionStore) Update(ctx context.Context, id string, in models.DiscussionInput) (*models.Discussion, error) {
	return s.mutate(OpUpdateDiscussion, "Failed to update discussion", "Discussion updated successfully", func(out *models.Discussion) error {
		return s.api.Put(ctx, "/discussions/"+id, in, out)
	})
}

func (s *DiscussionStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteDiscussion, "Failed to delete discussion", func() error {
		return s.api.Delete(ctx, "/discussions/"+id, nil)
	})
	if err != nil {
		return err
	}
	s.discussions.remove(id)
	s.success("Discussion deleted successfully")
	return nil
}

func (s *DiscussionStore) AddMessage(ctx context.Context, id string, msg models.DiscussionMessageRequest) (*models.Discussion, error) {
	if msg.Attachments == nil {
		msg.Attachments = []string{}
	}
	return s.mutate(OpAddMessage, "Failed to add message", "Message added successfully", func(out *models.Discussion) error {
		return s.api.Post(ctx, "/discussions/"+id+"/messages", msg, out)
	})
}

func (s *DiscussionStore) MarkRead(ctx context.Context, id string) (*models.Discussion, error) {
	return s.mutate(OpMarkMessagesAsRead, "Failed to mark messages as read", "", func(out *models.Discussion) error {
		return s.api.Put(ctx, "/discussions/"+id+"/mark-read", struct{}{}, out)
	})
}

func (s *DiscussionStore) AddParticipant(ctx context.Context, id, userID string) (*models.Discussion, error) {
	return s.mutate(OpAddParticipant, "Failed to add participant", "Participant added successfully", func(out *models.Discussion) error {
		return s.api.Put(ctx, "/discussions/"+id+"/participants", models.ParticipantRequest{UserID: userID}, out)
	})
}

func (s *DiscussionStore) RemoveParticipant(ctx context.Context, id, userID string) (*models.Discussion, error) {
	return s.mutate(OpRemoveParticipant, "Failed to remove participant", "Participant removed successfully", func(out *models.Discussion) error {
		return s.api.Delete(ctx, "/discussions/"+id+"/participants/"+userID, out)
	})
}

func (s *DiscussionStore) mutate(op, failMsg, okMsg string, call func(out *models.Discussion) error) (*models.Discussion, error) {
	var updated models.Discussion
	if err := s.do(op, failMsg, func() error { return call(&updated) }); err != nil {
		return nil, err
	}
	stored := s.discussions.update(updated)
	if okMsg != "" {
		s.success(okMsg)
	}
	return &stored, nil
}

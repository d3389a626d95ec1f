package services

import (
	"context"

	"journal-desk/client"
	"journal-desk/models"
	"journal-desk/notify"
)

const (
	OpIssues                 = "issues"
	OpIssue                  = "issue"
	OpCreateIssue            = "createIssue"
	OpUpdateIssue            = "updateIssue"
	OpDeleteIssue            = "deleteIssue"
	OpPublishIssue           = "publishIssue"
	OpAddArticleToIssue      = "addArticleToIssue"
	OpRemoveArticleFromIssue = "removeArticleFromIssue"
)

// IssueStore manages journal issues. Publishing is irreversible and a
// published issue is never deleted.
type IssueStore struct {
	storeBase
	issues *collection[models.Issue]
}

func NewIssueStore(api RESTClient, ui *UIState, notifier notify.Notifier) *IssueStore {
	return &IssueStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "IssueStore"},
		issues:    newCollection(func(i models.Issue) string { return i.ID }),
	}
}

func (s *IssueStore) Issues() []models.Issue { return s.issues.all() }

func (s *IssueStore) List(ctx context.Context) ([]models.Issue, error) {
	var out []models.Issue
	err := s.do(OpIssues, "Failed to load issues", func() error {
		_, err := s.api.Get(ctx, "/issues", nil, &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.issues.replaceAll(out)
	return out, nil
}

func (s *IssueStore) Get(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	err := s.do(OpIssue, "Failed to load issue details", func() error {
		_, err := s.api.Get(ctx, "/issues/"+id, nil, &issue)
		return err
	})
	if err != nil {
		return nil, err
	}
	stored := s.issues.setOpen(issue)
	return &stored, nil
}

func (s *IssueStore) Create(ctx context.Context, in models.IssueInput) (*models.Issue, error) {
	var created models.Issue
	err := s.do(OpCreateIssue, "Failed to create issue", func() error {
		return s.api.Post(ctx, "/issues", in, &created)
	})
	if err != nil {
		return nil, err
	}
	s.issues.prepend(created)
	s.success("Issue created successfully")
	return &created, nil
}

func (s *IssueStore) Update(ctx context.Context, id string, in models.IssueInput) (*models.Issue, error) {
	return s.mutate(OpUpdateIssue, "Failed to update issue", "Issue updated successfully", func(out *models.Issue) error {
		return s.api.Put(ctx, "/issues/"+id, in, out)
	})
}

// Delete refuses published issues without calling the backend. Backend
// refusals are reported with the backend's own message.
func (s *IssueStore) Delete(ctx context.Context, id string) error {
	if issue, ok := s.issues.find(id); ok && issue.IsPublished {
		return s.fail(OpDeleteIssue, "Cannot delete a published issue", models.ErrPublishedIssue)
	}

	s.ui.Begin(OpDeleteIssue)
	defer s.ui.End(OpDeleteIssue)
	if err := s.api.Delete(ctx, "/issues/"+id, nil); err != nil {
		msg, ok := client.ServerMessage(err)
		if !ok || client.StatusCode(err) >= 500 {
			msg = "Failed to delete issue"
		}
		return s.fail(OpDeleteIssue, msg, err)
	}
	s.issues.remove(id)
	s.success("Issue deleted successfully")
	return nil
}

func (s *IssueStore) Publish(ctx context.Context, id string) (*models.Issue, error) {
	return s.mutate(OpPublishIssue, "Failed to publish issue", "Issue published successfully", func(out *models.Issue) error {
		return s.api.Put(ctx, "/issues/"+id+"/publish", struct{}{}, out)
	})
}

func (s *IssueStore) AddArticle(ctx context.Context, issueID, articleID string) (*models.Issue, error) {
	return s.mutate(OpAddArticleToIssue, "Failed to add article to issue", "Article added to issue successfully", func(out *models.Issue) error {
		return s.api.Put(ctx, "/issues/"+issueID+"/add-article", models.IssueArticleRequest{ArticleID: articleID}, out)
	})
}

func (s *IssueStore) RemoveArticle(ctx context.Context, issueID, articleID string) (*models.Issue, error) {
	return s.mutate(OpRemoveArticleFromIssue, "Failed to remove article from issue", "Article removed from issue successfully", func(out *models.Issue) error {
		return s.api.Put(ctx, "/issues/"+issueID+"/remove-article", models.IssueArticleRequest{ArticleID: articleID}, out)
	})
}

func (s *IssueStore) mutate(op, failMsg, okMsg string, call func(out *models.Issue) error) (*models.Issue, error) {
	var updated models.Issue
	if err := s.do(op, failMsg, func() error { return call(&updated) }); err != nil {
		return nil, err
	}
	stored := s.issues.update(updated)
	s.success(okMsg)
	return &stored, nil
}

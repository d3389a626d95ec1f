package services

import (
	"sync"

	"journal-desk/notify"
	"journal-desk/uploader"
)

const toastLimit = 50

// Desk is one user's set of stores. Stores of a desk share its UI state and
// notification buffer.
type Desk struct {
	UI          *UIState
	Notices     *notify.Buffer
	Articles    *ArticleStore
	Files       *FileStore
	Authors     *AuthorStore
	Fields      *FieldStore
	Issues      *IssueStore
	Reviews     *ReviewStore
	Discussions *DiscussionStore
	Submissions *SubmissionService
}

// DeskDeps are the shared collaborators every desk is built from.
type DeskDeps struct {
	API       RESTClient
	Uploader  uploader.Uploader
	Drafts    *DraftService
	Validator *Validator
	Accounts  AccountDirectory
}

func NewDesk(deps DeskDeps) *Desk {
	ui := NewUIState()
	notices := notify.NewBuffer(toastLimit)

	d := &Desk{
		UI:          ui,
		Notices:     notices,
		Articles:    NewArticleStore(deps.API, ui, notices),
		Files:       NewFileStore(deps.API, deps.Uploader, ui, notices),
		Authors:     NewAuthorStore(deps.API, deps.Validator, deps.Accounts, ui, notices),
		Fields:      NewFieldStore(deps.API, deps.Validator, ui, notices),
		Issues:      NewIssueStore(deps.API, ui, notices),
		Reviews:     NewReviewStore(deps.API, ui, notices),
		Discussions: NewDiscussionStore(deps.API, ui, notices),
	}
	d.Submissions = NewSubmissionService(d.Articles, d.Files, deps.Uploader, deps.Drafts, notices)
	return d
}

// DeskRegistry hands out one desk per user.
type DeskRegistry struct {
	deps DeskDeps

	mu    sync.Mutex
	desks map[string]*Desk
}

func NewDeskRegistry(deps DeskDeps) *DeskRegistry {
	return &DeskRegistry{deps: deps, desks: map[string]*Desk{}}
}

// For returns owner's desk, creating it on first use.
func (r *DeskRegistry) For(owner string) *Desk {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.desks[owner]
	if !ok {
		d = NewDesk(r.deps)
		r.desks[owner] = d
	}
	return d
}

// Drop discards owner's desk and everything it cached.
func (r *DeskRegistry) Drop(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.desks[owner]; ok {
		d.Articles.Reset()
		delete(r.desks, owner)
	}
}

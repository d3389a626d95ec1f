package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"journal-desk/models"

	"github.com/google/uuid"
)

// Session is one open submission wizard. It lives until closed.
type Session struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Key       models.DraftKey `json:"draftKey"`
	Wizard    *Wizard         `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
	Restored  bool            `json:"restored"`
}

// SessionManager owns the open wizards and their autosave jobs.
type SessionManager struct {
	drafts         *DraftService
	autosaver      *Autosaver
	validator      *Validator
	attachmentExts []string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(drafts *DraftService, autosaver *Autosaver, v *Validator, attachmentExts []string) *SessionManager {
	return &SessionManager{
		drafts:         drafts,
		autosaver:      autosaver,
		validator:      v,
		attachmentExts: attachmentExts,
		sessions:       map[string]*Session{},
	}
}

// Open starts a wizard for owner. With article set the wizard edits it;
// otherwise it is a new submission, resuming draftSession's draft if given.
// A stored draft is restored onto the form.
func (m *SessionManager) Open(ctx context.Context, owner string, article *models.Article, draftSession string) (*Session, error) {
	s := &Session{ID: uuid.NewString(), Owner: owner, CreatedAt: time.Now()}
	if article != nil {
		s.Key = models.DraftKey{Owner: owner, ArticleID: article.ID}
		s.Wizard = NewEditWizard(m.validator, m.attachmentExts, *article)
	} else {
		s.Key = models.DraftKey{Owner: owner, Session: s.ID}
		if draftSession != "" {
			s.Key.Session = draftSession
		}
		s.Wizard = NewWizard(m.validator, m.attachmentExts)
	}

	draft, err := m.drafts.Load(ctx, s.Key)
	switch {
	case err == nil:
		s.Wizard.Restore(*draft)
		s.Restored = true
	case !errors.Is(err, models.ErrDraftNotFound):
		log.Printf("[SessionManager] restore %s: %v", s.Key, err)
	}

	if err := m.autosaver.Watch(s.ID, s.Key, s.Wizard.Snapshot, s.Wizard.MarkSavedDraft); err != nil {
		return nil, err
	}
	if s.Restored {
		m.autosaver.MarkSaved(s.ID, s.Wizard.Snapshot())
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns owner's session. Sessions of other owners are not found.
func (m *SessionManager) Get(id, owner string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.Owner != owner {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// SaveDraft stores the current form immediately.
func (m *SessionManager) SaveDraft(ctx context.Context, s *Session) (*models.Draft, error) {
	snap := s.Wizard.Snapshot()
	draft, err := m.drafts.Save(ctx, s.Key, snap)
	if err != nil {
		return nil, err
	}
	s.Wizard.MarkSaved(draft.SavedAt)
	m.autosaver.MarkSaved(s.ID, snap)
	return draft, nil
}

// ClearDraft removes the stored draft and resets the form to a blank template.
func (m *SessionManager) ClearDraft(ctx context.Context, s *Session) error {
	if err := m.drafts.Clear(ctx, s.Key); err != nil {
		return err
	}
	s.Wizard.Reset()
	return nil
}

func (m *SessionManager) Drafts(ctx context.Context, owner string) ([]models.Draft, error) {
	return m.drafts.List(ctx, owner)
}

// Close stops autosave and forgets the session. The stored draft stays.
func (m *SessionManager) Close(id, owner string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.Owner != owner {
		m.mu.Unlock()
		return models.ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	m.autosaver.Unwatch(s.ID)
	return nil
}

// CloseOwner closes every session of owner, e.g. on logout.
func (m *SessionManager) CloseOwner(owner string) {
	m.mu.Lock()
	var closed []*Session
	for id, s := range m.sessions {
		if s.Owner == owner {
			closed = append(closed, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range closed {
		m.autosaver.Unwatch(s.ID)
	}
}

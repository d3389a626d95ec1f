package models

import (
	"strings"
	"time"
)

// DraftSnapshot is the persisted projection of a submission form. Staged
// files are not part of it.
type DraftSnapshot struct {
	Title           string          `json:"title"`
	Abstract        string          `json:"abstract"`
	Keywords        string          `json:"keywords"`
	ArticleLanguage string          `json:"articleLanguage"`
	Authors         []ArticleAuthor `json:"authors"`
}

// Empty reports whether nothing worth autosaving has been entered.
func (s DraftSnapshot) Empty() bool {
	if strings.TrimSpace(s.Title) != "" || strings.TrimSpace(s.Abstract) != "" || strings.TrimSpace(s.Keywords) != "" {
		return false
	}
	for _, a := range s.Authors {
		if strings.TrimSpace(a.FullName) != "" {
			return false
		}
	}
	return true
}

// DraftKey scopes a draft to its owner and to either an existing article or
// a new-submission session.
type DraftKey struct {
	Owner     string `json:"owner"`
	ArticleID string `json:"articleId,omitempty"`
	Session   string `json:"session,omitempty"`
}

func (k DraftKey) String() string {
	if k.ArticleID != "" {
		return k.Owner + ":article:" + k.ArticleID
	}
	return k.Owner + ":new:" + k.Session
}

// ParseDraftKey is the inverse of DraftKey.String.
func ParseDraftKey(s string) (DraftKey, bool) {
	if owner, id, ok := strings.Cut(s, ":article:"); ok && owner != "" && id != "" {
		return DraftKey{Owner: owner, ArticleID: id}, true
	}
	if owner, session, ok := strings.Cut(s, ":new:"); ok && owner != "" && session != "" {
		return DraftKey{Owner: owner, Session: session}, true
	}
	return DraftKey{}, false
}

type Draft struct {
	ID        uint          `json:"-" gorm:"primarykey"`
	Key       string        `json:"key" gorm:"column:draft_key;uniqueIndex;size:255;not null"`
	Owner     string        `json:"owner" gorm:"index;not null"`
	Snapshot  DraftSnapshot `json:"snapshot" gorm:"serializer:json;type:text"`
	SavedAt   time.Time     `json:"savedAt"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`
}

// LastSavedLabel is the human-readable "last saved" stamp shown next to the form.
func (d Draft) LastSavedLabel() string {
	return d.SavedAt.Local().Format("15:04:05 02/01/2006")
}

package models

import (
	"encoding/json"
	"time"
)

type ArticleStatus string

const (
	StatusDraft             ArticleStatus = "draft"
	StatusSubmitted         ArticleStatus = "submitted"
	StatusUnderReview       ArticleStatus = "under_review"
	StatusRevisionRequested ArticleStatus = "revision_requested"
	StatusAccepted          ArticleStatus = "accepted"
	StatusRejected          ArticleStatus = "rejected"
	StatusPublished         ArticleStatus = "published"
)

// statusAliases maps spellings seen on the wire to their canonical value.
var statusAliases = map[string]ArticleStatus{
	"revisions_required": StatusRevisionRequested,
}

// NormalizeStatus returns the canonical form of a wire status.
func NormalizeStatus(raw string) ArticleStatus {
	if canonical, ok := statusAliases[raw]; ok {
		return canonical
	}
	return ArticleStatus(raw)
}

func (s *ArticleStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NormalizeStatus(raw)
	return nil
}

func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusRevisionRequested,
		StatusAccepted, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// NextStatuses lists the states an editor is offered from s. The store does
// not enforce these; the backend owns transition rules.
func NextStatuses(s ArticleStatus) []ArticleStatus {
	switch s {
	case StatusDraft:
		return []ArticleStatus{StatusSubmitted}
	case StatusSubmitted:
		return []ArticleStatus{StatusUnderReview}
	case StatusUnderReview:
		return []ArticleStatus{StatusAccepted, StatusRejected, StatusRevisionRequested}
	case StatusRevisionRequested:
		return []ArticleStatus{StatusUnderReview}
	case StatusAccepted:
		return []ArticleStatus{StatusPublished}
	}
	return nil
}

type StatusHistory struct {
	ID        string        `json:"_id,omitempty"`
	Status    ArticleStatus `json:"status"`
	ChangedBy *Ref          `json:"changedBy,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Reason    string        `json:"reason,omitempty"`
}

// UnmarshalJSON accepts an unpopulated history id as well as the full entry.
func (h *StatusHistory) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &h.ID)
	}
	type alias StatusHistory
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*h = StatusHistory(a)
	return nil
}

func (h StatusHistory) sameEntry(o StatusHistory) bool {
	if h.ID != "" || o.ID != "" {
		return h.ID == o.ID
	}
	return h.Status == o.Status && h.Timestamp.Equal(o.Timestamp) && h.Reason == o.Reason
}

// MergeHistory folds a fresh server copy of a status log into the one already
// known. Known entries are kept in place and unchanged; unseen entries are
// appended in server order.
func MergeHistory(known, fresh []StatusHistory) []StatusHistory {
	merged := make([]StatusHistory, len(known), len(known)+len(fresh))
	copy(merged, known)
	for _, entry := range fresh {
		seen := false
		for _, k := range known {
			if k.sameEntry(entry) {
				seen = true
				break
			}
		}
		if !seen {
			merged = append(merged, entry)
		}
	}
	return merged
}

type Article struct {
	ID              string          `json:"_id"`
	TitlePrefix     string          `json:"titlePrefix,omitempty"`
	Title           string          `json:"title"`
	Subtitle        string          `json:"subtitle,omitempty"`
	Thumbnail       string          `json:"thumbnail,omitempty"`
	Abstract        string          `json:"abstract"`
	Keywords        []string        `json:"keywords"`
	ArticleLanguage string          `json:"articleLanguage"`
	OtherLanguage   string          `json:"otherLanguage,omitempty"`
	Authors         []ArticleAuthor `json:"authors"`
	Status          ArticleStatus   `json:"status"`
	StatusHistory   []StatusHistory `json:"statusHistory"`
	Field           *Ref            `json:"field,omitempty"`
	SecondaryFields []Ref           `json:"secondaryFields,omitempty"`
	SubmitterID     *Ref            `json:"submitterId,omitempty"`
	EditorID        *Ref            `json:"editorId,omitempty"`
	ViewCount       int             `json:"viewCount"`
	DOI             string          `json:"doi,omitempty"`
	IssueID         string          `json:"issueId,omitempty"`
	PageStart       *int            `json:"pageStart,omitempty"`
	PageEnd         *int            `json:"pageEnd,omitempty"`
	SubmitterNote   string          `json:"submitterNote,omitempty"`
	Files           []ArticleFile   `json:"files,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ArticleStats is the per-status count map served by /articles/stats.
type ArticleStats map[string]int

package models

import (
	"net/url"
	"time"
)

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewAccepted  ReviewStatus = "accepted"
	ReviewDeclined  ReviewStatus = "declined"
	ReviewCompleted ReviewStatus = "completed"
)

type Recommendation string

const (
	RecommendAccept        Recommendation = "accept"
	RecommendMinorRevision Recommendation = "minor_revision"
	RecommendMajorRevision Recommendation = "major_revision"
	RecommendReject        Recommendation = "reject"
)

type Review struct {
	ID                string         `json:"_id"`
	ArticleID         *Ref           `json:"articleId,omitempty"`
	ReviewerID        *Ref           `json:"reviewerId,omitempty"`
	Status            ReviewStatus   `json:"status"`
	ResponseDeadline  *time.Time     `json:"responseDeadline,omitempty"`
	ReviewDeadline    *time.Time     `json:"reviewDeadline,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	Recommendation    Recommendation `json:"recommendation,omitempty"`
	CommentsForAuthor string         `json:"commentsForAuthor,omitempty"`
	CommentsForEditor string         `json:"commentsForEditor,omitempty"`
	DeclineReason     string         `json:"declineReason,omitempty"`
	Round             int            `json:"round"`
	CreatedAt         *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time     `json:"updatedAt,omitempty"`
}

type ReviewInput struct {
	ArticleID        string     `json:"articleId"`
	ReviewerID       string     `json:"reviewerId"`
	ResponseDeadline *time.Time `json:"responseDeadline,omitempty"`
	ReviewDeadline   *time.Time `json:"reviewDeadline,omitempty"`
	Round            int        `json:"round,omitempty"`
}

type ReviewerAssignment struct {
	ReviewerID       string     `json:"reviewerId"`
	ResponseDeadline *time.Time `json:"responseDeadline,omitempty"`
	ReviewDeadline   *time.Time `json:"reviewDeadline,omitempty"`
}

type MultipleReviewRequest struct {
	ArticleID string               `json:"articleId"`
	Reviewers []ReviewerAssignment `json:"reviewers"`
}

type DeclineReviewRequest struct {
	DeclineReason string `json:"declineReason"`
}

type CompleteReviewRequest struct {
	Recommendation    Recommendation `json:"recommendation"`
	CommentsForAuthor string         `json:"commentsForAuthor"`
	CommentsForEditor string         `json:"commentsForEditor"`
}

type ReviewListParams struct {
	ArticleID  string       `form:"articleId"`
	ReviewerID string       `form:"reviewerId"`
	Status     ReviewStatus `form:"status"`
}

func (p ReviewListParams) Values() url.Values {
	q := url.Values{}
	setString(q, "articleId", p.ArticleID)
	setString(q, "reviewerId", p.ReviewerID)
	setString(q, "status", string(p.Status))
	return q
}

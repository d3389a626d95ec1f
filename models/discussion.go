package models

import "time"

type ReadReceipt struct {
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type DiscussionMessage struct {
	SenderID    *Ref          `json:"senderId,omitempty"`
	Content     string        `json:"content"`
	Attachments []string      `json:"attachments"`
	Timestamp   time.Time     `json:"timestamp"`
	ReadBy      []ReadReceipt `json:"readBy"`
}

type Discussion struct {
	ID           string              `json:"_id"`
	ArticleID    *Ref                `json:"articleId,omitempty"`
	Subject      string              `json:"subject"`
	InitiatorID  *Ref                `json:"initiatorId,omitempty"`
	Participants []Ref               `json:"participants"`
	Messages     []DiscussionMessage `json:"messages"`
	Type         string              `json:"type"`
	Round        int                 `json:"round"`
	IsActive     bool                `json:"isActive"`
	CreatedAt    *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time          `json:"updatedAt,omitempty"`
}

type DiscussionInput struct {
	ArticleID    string   `json:"articleId"`
	Subject      string   `json:"subject"`
	Participants []string `json:"participants,omitempty"`
	Type         string   `json:"type,omitempty"`
	Round        int      `json:"round,omitempty"`
	Message      string   `json:"message,omitempty"`
}

type DiscussionMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

type ParticipantRequest struct {
	UserID string `json:"userId"`
}

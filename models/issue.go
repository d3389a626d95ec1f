package models

import "time"

type Issue struct {
	ID              string     `json:"_id"`
	Title           string     `json:"title"`
	VolumeNumber    int        `json:"volumeNumber"`
	IssueNumber     int        `json:"issueNumber"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
	IsPublished     bool       `json:"isPublished"`
	Articles        []Ref      `json:"articles"`
}

type IssueInput struct {
	Title           string     `json:"title"`
	VolumeNumber    int        `json:"volumeNumber"`
	IssueNumber     int        `json:"issueNumber"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
}

type IssueArticleRequest struct {
	ArticleID string `json:"articleId"`
}

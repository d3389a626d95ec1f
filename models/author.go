package models

import (
	"encoding/json"
	"time"
)

type ArticleAuthor struct {
	ID              string     `json:"_id,omitempty"`
	ArticleID       string     `json:"articleId,omitempty"`
	UserID          *Ref       `json:"userId,omitempty"`
	HasAccount      bool       `json:"hasAccount"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Institution     string     `json:"institution"`
	Country         string     `json:"country"`
	IsCorresponding bool       `json:"isCorresponding"`
	Order           int        `json:"order,omitempty"`
	ORCID           string     `json:"orcid,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts an unpopulated author id as well as the full record.
func (a *ArticleAuthor) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &a.ID)
	}
	type alias ArticleAuthor
	var v alias
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = ArticleAuthor(v)
	return nil
}

// AuthorInput is the author sub-form. HasAccount is never taken from the
// caller; it is derived from the user directory.
type AuthorInput struct {
	FullName        string `json:"fullName" errkey:"authorName" validate:"required"`
	Email           string `json:"email" errkey:"authorEmail" validate:"required,basicemail"`
	Institution     string `json:"institution"`
	Country         string `json:"country"`
	IsCorresponding bool   `json:"isCorresponding"`
	ORCID           string `json:"orcid"`
	ArticleID       string `json:"articleId,omitempty"`
	Order           int    `json:"order,omitempty"`
}

func (in AuthorInput) Author() ArticleAuthor {
	return ArticleAuthor{
		ArticleID:       in.ArticleID,
		FullName:        in.FullName,
		Email:           in.Email,
		Institution:     in.Institution,
		Country:         in.Country,
		IsCorresponding: in.IsCorresponding,
		ORCID:           in.ORCID,
		Order:           in.Order,
	}
}

type AuthorListParams struct {
	HasAccount      *bool `form:"hasAccount"`
	IsCorresponding *bool `form:"isCorresponding"`
}

package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Envelope is the shape of every backend response.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ArticleListParams struct {
	Page        int           `form:"page,default=1" json:"page"`
	Limit       int           `form:"limit,default=10" json:"limit"`
	Status      ArticleStatus `form:"status" json:"status,omitempty"`
	Field       string        `form:"field" json:"field,omitempty"`
	SubmitterID string        `form:"submitterId" json:"submitterId,omitempty"`
	Search      string        `form:"search" json:"search,omitempty"`
}

// Values encodes the params as a backend query string. Zero values are left out.
func (p ArticleListParams) Values() url.Values {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setInt(q, "limit", p.Limit)
	setString(q, "status", string(p.Status))
	setString(q, "field", p.Field)
	setString(q, "submitterId", p.SubmitterID)
	setString(q, "search", p.Search)
	return q
}

func (p AuthorListParams) Values() url.Values {
	q := url.Values{}
	setBool(q, "hasAccount", p.HasAccount)
	setBool(q, "isCorresponding", p.IsCorresponding)
	return q
}

func (p FieldListParams) Values() url.Values {
	q := url.Values{}
	setBool(q, "isActive", p.IsActive)
	setInt(q, "level", p.Level)
	setString(q, "parent", p.Parent)
	return q
}

func (p FileListParams) Values() url.Values {
	q := url.Values{}
	setInt(q, "round", p.Round)
	setString(q, "fileCategory", string(p.FileCategory))
	return q
}

func setInt(q url.Values, key string, v int) {
	if v != 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}

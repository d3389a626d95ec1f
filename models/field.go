package models

import "errors"

var ErrFieldSelfParent = errors.New("a field cannot be its own parent")

type Field struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Parent   *Ref   `json:"parent,omitempty"`
	Level    int    `json:"level"`
	IsActive bool   `json:"isActive"`
}

type FieldInput struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Parent   string `json:"parent,omitempty"`
	Level    int    `json:"level"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type FieldListParams struct {
	IsActive *bool  `form:"isActive"`
	Level    int    `form:"level"`
	Parent   string `form:"parent"`
}

// DeriveLevel gives the level of a field placed under parent: 1 for a root.
func DeriveLevel(parent *Field) int {
	if parent == nil {
		return 1
	}
	return parent.Level + 1
}

package models

import "time"

type FileCategory string

const (
	FileManuscript    FileCategory = "manuscript"
	FileMain          FileCategory = "main"
	FileThumbnail     FileCategory = "thumbnail"
	FileSupplementary FileCategory = "supplementary"
	FileRevision      FileCategory = "revision"
)

type ArticleFile struct {
	ID           string       `json:"_id"`
	ArticleID    string       `json:"articleId"`
	FileCategory FileCategory `json:"fileCategory"`
	FileName     string       `json:"fileName"`
	OriginalName string       `json:"originalName,omitempty"`
	FileSize     int64        `json:"fileSize"`
	FileType     string       `json:"fileType"`
	FileURL      string       `json:"fileUrl"`
	UploadedBy   *Ref         `json:"uploadedBy,omitempty"`
	IsActive     bool         `json:"isActive"`
	Round        int          `json:"round,omitempty"`
	FileVersion  int          `json:"fileVersion,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
}

type RegisterFileRequest struct {
	ArticleID    string       `json:"articleId"`
	FileCategory FileCategory `json:"fileCategory"`
	Round        int          `json:"round"`
	FileName     string       `json:"fileName"`
	OriginalName string       `json:"originalName"`
	FileType     string       `json:"fileType"`
	FileSize     int64        `json:"fileSize"`
	FileURL      string       `json:"fileUrl"`
}

type FileListParams struct {
	Round        int          `form:"round"`
	FileCategory FileCategory `form:"fileCategory"`
}

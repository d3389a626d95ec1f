package models

// ArticleInput is the create/update payload. Only non-empty values are sent
// on update.
type ArticleInput struct {
	TitlePrefix     string          `json:"titlePrefix,omitempty"`
	Title           string          `json:"title,omitempty"`
	Subtitle        string          `json:"subtitle,omitempty"`
	Thumbnail       string          `json:"thumbnail,omitempty"`
	Abstract        string          `json:"abstract,omitempty"`
	Keywords        []string        `json:"keywords,omitempty"`
	ArticleLanguage string          `json:"articleLanguage,omitempty"`
	OtherLanguage   string          `json:"otherLanguage,omitempty"`
	Authors         []ArticleAuthor `json:"authors,omitempty"`
	Field           string          `json:"field,omitempty"`
	SecondaryFields []string        `json:"secondaryFields,omitempty"`
	Status          ArticleStatus   `json:"status,omitempty"`
	SubmitterNote   string          `json:"submitterNote,omitempty"`
}

type ChangeStatusRequest struct {
	Status ArticleStatus `json:"status" binding:"required"`
	Reason string        `json:"reason"`
}

type AssignEditorRequest struct {
	EditorID string `json:"editorId" binding:"required"`
}

// PublishRequest is forwarded as given; page order is not checked.
type PublishRequest struct {
	DOI       string `json:"doi,omitempty"`
	IssueID   string `json:"issueId,omitempty"`
	PageStart *int   `json:"pageStart,omitempty"`
	PageEnd   *int   `json:"pageEnd,omitempty"`
}

type ThumbnailRequest struct {
	Thumbnail string `json:"thumbnail"`
}

type FileStatusRequest struct {
	IsActive bool `json:"isActive"`
}

// FormPatch updates wizard form values. Nil fields are left untouched.
type FormPatch struct {
	TitlePrefix     *string `json:"titlePrefix"`
	Title           *string `json:"title"`
	Subtitle        *string `json:"subtitle"`
	Abstract        *string `json:"abstract"`
	Keywords        *string `json:"keywords"`
	ArticleLanguage *string `json:"articleLanguage"`
	OtherLanguage   *string `json:"otherLanguage"`
	SubmitterNote   *string `json:"submitterNote"`
}

type FieldSelectionRequest struct {
	Primary         *string `json:"primary"`
	AddSecondary    string  `json:"addSecondary"`
	RemoveSecondary string  `json:"removeSecondary"`
}

type StageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// OpenSessionRequest starts a wizard. ArticleID opens it in edit mode;
// DraftSession resumes an earlier new-submission draft.
type OpenSessionRequest struct {
	ArticleID    string `json:"articleId"`
	DraftSession string `json:"draftSession"`
}

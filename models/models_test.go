package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDecodesPopulatedAndBareReferences(t *testing.T) {
	raw := `{
		"_id": "a1",
		"title": "IoT Sensor Networks",
		"status": "revisions_required",
		"field": {"_id": "F1", "name": "Computer Science"},
		"secondaryFields": ["F2", {"_id": "F3", "name": "Physics"}],
		"submitterId": "u1",
		"authors": ["au1", {"_id": "au2", "fullName": "Nguyen Van A", "email": "a@b.co"}],
		"statusHistory": ["h1"]
	}`

	var a Article
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, StatusRevisionRequested, a.Status)
	assert.Equal(t, "F1", RefID(a.Field))
	assert.Equal(t, "Computer Science", a.Field.Name)
	require.Len(t, a.SecondaryFields, 2)
	assert.Equal(t, "F2", a.SecondaryFields[0].ID)
	assert.Equal(t, "Physics", a.SecondaryFields[1].Name)
	assert.Equal(t, "u1", RefID(a.SubmitterID))
	require.Len(t, a.Authors, 2)
	assert.Equal(t, "au1", a.Authors[0].ID)
	assert.Equal(t, "Nguyen Van A", a.Authors[1].FullName)
	assert.Equal(t, "h1", a.StatusHistory[0].ID)
	assert.Nil(t, a.EditorID)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusRevisionRequested, NormalizeStatus("revisions_required"))
	assert.Equal(t, StatusUnderReview, NormalizeStatus("under_review"))
	assert.True(t, NormalizeStatus("revisions_required").Valid())
	assert.False(t, ArticleStatus("archived").Valid())
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []ArticleStatus{StatusAccepted, StatusRejected, StatusRevisionRequested}, NextStatuses(StatusUnderReview))
	assert.Empty(t, NextStatuses(StatusRejected))
	assert.Empty(t, NextStatuses(StatusPublished))
}

func TestMergeHistoryNeverDropsKnownEntries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	known := []StatusHistory{
		{ID: "h1", Status: StatusSubmitted, Timestamp: t0},
		{ID: "h2", Status: StatusUnderReview, Timestamp: t0.Add(time.Hour), Reason: "assigned"},
	}

	// server copy rewrote h2 and lost h1
	fresh := []StatusHistory{
		{ID: "h2", Status: StatusRejected, Timestamp: t0.Add(time.Hour)},
		{ID: "h3", Status: StatusAccepted, Timestamp: t0.Add(2 * time.Hour)},
	}

	merged := MergeHistory(known, fresh)
	require.Len(t, merged, 3)
	assert.Equal(t, known[0], merged[0])
	assert.Equal(t, known[1], merged[1])
	assert.Equal(t, "h3", merged[2].ID)
}

func TestMergeHistoryWithoutIDs(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	known := []StatusHistory{{Status: StatusSubmitted, Timestamp: t0}}
	fresh := []StatusHistory{{Status: StatusSubmitted, Timestamp: t0}, {Status: StatusUnderReview, Timestamp: t0.Add(time.Minute)}}

	merged := MergeHistory(known, fresh)
	assert.Len(t, merged, 2)
	assert.Equal(t, StatusUnderReview, merged[1].Status)
}

func TestFieldErrorsKeepInsertionOrder(t *testing.T) {
	errs := NewFieldErrors()
	errs.Set("title", "title is required")
	errs.Set("keywords", "keywords is required")
	errs.Set("authors", "add at least one author")
	errs.Set("title", "title is still required")

	assert.Equal(t, "title", errs.First())
	assert.Equal(t, []string{"title", "keywords", "authors"}, errs.Keys())

	b, err := json.Marshal(errs)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"title is still required","keywords":"keywords is required","authors":"add at least one author"}`, string(b))

	errs.Delete("title")
	assert.Equal(t, "keywords", errs.First())
	assert.Equal(t, 2, errs.Len())
}

func TestDraftSnapshotEmpty(t *testing.T) {
	assert.True(t, DraftSnapshot{ArticleLanguage: "vi"}.Empty())
	assert.True(t, DraftSnapshot{Title: "   ", Authors: []ArticleAuthor{{Email: "x@y.z"}}}.Empty())
	assert.False(t, DraftSnapshot{Keywords: "iot"}.Empty())
	assert.False(t, DraftSnapshot{Authors: []ArticleAuthor{{FullName: "Nguyen Van A"}}}.Empty())
}

func TestDraftKeyScopes(t *testing.T) {
	assert.Equal(t, "u1:article:a1", DraftKey{Owner: "u1", ArticleID: "a1", Session: "s"}.String())
	assert.Equal(t, "u1:new:s1", DraftKey{Owner: "u1", Session: "s1"}.String())
	assert.NotEqual(t, DraftKey{Owner: "u1", Session: "s1"}.String(), DraftKey{Owner: "u1", Session: "s2"}.String())

	for _, key := range []DraftKey{{Owner: "u1", ArticleID: "a1"}, {Owner: "u1", Session: "s1"}} {
		parsed, ok := ParseDraftKey(key.String())
		assert.True(t, ok)
		assert.Equal(t, key, parsed)
	}
	_, ok := ParseDraftKey("garbage")
	assert.False(t, ok)
}

func TestListParamValues(t *testing.T) {
	active := false
	assert.Equal(t, "limit=10&page=2&status=under_review", ArticleListParams{Page: 2, Limit: 10, Status: StatusUnderReview}.Values().Encode())
	assert.Equal(t, "isActive=false&parent=F1", FieldListParams{IsActive: &active, Parent: "F1"}.Values().Encode())
	assert.Equal(t, "fileCategory=manuscript&round=1", FileListParams{Round: 1, FileCategory: FileManuscript}.Values().Encode())
	assert.Empty(t, AuthorListParams{}.Values().Encode())
}

func TestDeriveLevel(t *testing.T) {
	assert.Equal(t, 1, DeriveLevel(nil))
	assert.Equal(t, 3, DeriveLevel(&Field{Level: 2}))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, "article-thumbnail", cfg.CloudinaryThumbnailPreset)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("DRAFT_DRIVER", "postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ATTACHMENT_EXTENSIONS", ".PDF, .tex ,")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "postgres", cfg.DraftDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{".pdf", ".tex"}, cfg.AttachmentExtensions)
}

func TestInitDraftDBSqlite(t *testing.T) {
	db, err := InitDraftDB(Config{DraftDriver: "sqlite", DraftDSN: "file::memory:"})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("drafts"))
}

func TestInitDraftDBUnknownDriver(t *testing.T) {
	_, err := InitDraftDB(Config{DraftDriver: "mysql"})
	assert.Error(t, err)
}

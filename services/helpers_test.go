package services

import (
	"context"
	"testing"
	"time"

	"journal-desk/apitest"
	"journal-desk/client"
	"journal-desk/models"
	"journal-desk/notify"
	"journal-desk/repositories"
	"journal-desk/uploader"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
)

type fixture struct {
	ctx       context.Context
	backend   *apitest.Backend
	uploads   *apitest.Uploader
	drafts    *DraftService
	validator *Validator
	desk      *Desk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := apitest.New(t)
	uploads := apitest.NewUploader()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	drafts := NewDraftService(repositories.NewRedisDraftRepository(rdb, 0))

	api := backend.Client()
	v := NewValidator()
	desk := NewDesk(DeskDeps{
		API:       api,
		Uploader:  uploads,
		Drafts:    drafts,
		Validator: v,
		Accounts:  NewEmailDirectory(api, time.Minute),
	})

	return &fixture{
		ctx:       client.WithToken(context.Background(), "token-u1"),
		backend:   backend,
		uploads:   uploads,
		drafts:    drafts,
		validator: v,
		desk:      desk,
	}
}

func strPtr(s string) *string { return &s }

// filledWizard is a new-submission wizard that passes validation.
func filledWizard(t *testing.T, v *Validator) *Wizard {
	t.Helper()
	w := NewWizard(v, []string{".pdf", ".zip"})
	w.Patch(models.FormPatch{
		Title:    strPtr("IoT Sensor Networks"),
		Abstract: strPtr("We study low-power sensor meshes."),
		Keywords: strPtr("iot, sensors"),
	})
	w.SetPrimaryField("field-cs")
	require.NoError(t, w.AddAuthor(models.AuthorInput{FullName: "Nguyen Van A", Email: "a@x.io", IsCorresponding: true}, false))
	require.NoError(t, w.StageManuscript(uploader.NewFile("paper.pdf", pdfBytes)))
	return w
}

func messages(toasts []notify.Toast, level notify.Level) []string {
	var out []string
	for _, t := range toasts {
		if t.Level == level {
			out = append(out, t.Message)
		}
	}
	return out
}

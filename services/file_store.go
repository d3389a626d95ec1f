package services

import (
	"context"
	"fmt"

	"journal-desk/models"
	"journal-desk/notify"
	"journal-desk/uploader"
)

const (
	OpFiles      = "files"
	OpUploadFile = "uploadFile"
	OpDeleteFile = "deleteFile"
	OpUpdateFile = "updateFile"
)

// FileStore tracks article files. Within one (article, category) pair at
// most one file is active.
type FileStore struct {
	storeBase
	files    *collection[models.ArticleFile]
	uploader uploader.Uploader
}

func NewFileStore(api RESTClient, up uploader.Uploader, ui *UIState, notifier notify.Notifier) *FileStore {
	return &FileStore{
		storeBase: storeBase{api: api, ui: ui, notifier: notifier, name: "FileStore"},
		files:     newCollection(func(f models.ArticleFile) string { return f.ID }),
		uploader:  up,
	}
}

func (s *FileStore) Files() []models.ArticleFile { return s.files.all() }

// ActiveCount counts active cached files for the pair.
func (s *FileStore) ActiveCount(articleID string, category models.FileCategory) int {
	n := 0
	for _, f := range s.files.all() {
		if f.ArticleID == articleID && f.FileCategory == category && f.IsActive {
			n++
		}
	}
	return n
}

func (s *FileStore) List(ctx context.Context, articleID string, params models.FileListParams) ([]models.ArticleFile, error) {
	var out []models.ArticleFile
	err := s.do(OpFiles, "Failed to load article files", func() error {
		_, err := s.api.Get(ctx, "/article-files/"+articleID, params.Values(), &out)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.files.replaceAll(out)
	return out, nil
}

// Register records an already uploaded file against its article.
func (s *FileStore) Register(ctx context.Context, req models.RegisterFileRequest) (*models.ArticleFile, error) {
	var created models.ArticleFile
	err := s.do(OpUploadFile, "Failed to upload file", func() error {
		return s.api.Post(ctx, "/article-files/"+req.ArticleID+"/upload", req, &created)
	})
	if err != nil {
		return nil, err
	}

	s.files.prepend(created)
	if created.IsActive {
		s.deactivateSiblings(created)
	}
	s.success("File uploaded successfully")
	return &created, nil
}

// UploadAndRegister sends the binary to the object store and registers it.
func (s *FileStore) UploadAndRegister(ctx context.Context, articleID string, file *uploader.File, category models.FileCategory, round int) (*models.ArticleFile, error) {
	var up *uploader.FileUpload
	err := s.do(OpUploadFile, "Failed to upload file", func() error {
		var err error
		up, err = s.uploader.UploadFile(ctx, file)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Register(ctx, RegistrationFor(articleID, file, up, category, round))
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	err := s.do(OpDeleteFile, "Failed to delete file", func() error {
		return s.api.Delete(ctx, "/article-files/"+id, nil)
	})
	if err != nil {
		return err
	}
	s.files.remove(id)
	s.success("File deleted successfully")
	return nil
}

// SetActive flips the file's active flag. Activating it deactivates the other
// cached files of the same article and category.
func (s *FileStore) SetActive(ctx context.Context, id string, active bool) (*models.ArticleFile, error) {
	var updated models.ArticleFile
	err := s.do(OpUpdateFile, "Failed to update file status", func() error {
		return s.api.Put(ctx, "/article-files/"+id+"/status", models.FileStatusRequest{IsActive: active}, &updated)
	})
	if err != nil {
		return nil, err
	}

	updated.IsActive = active
	s.files.update(updated)
	if active {
		s.deactivateSiblings(updated)
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	s.success(fmt.Sprintf("File %s successfully", state))
	return &updated, nil
}

func (s *FileStore) deactivateSiblings(active models.ArticleFile) {
	s.files.each(func(f *models.ArticleFile) {
		if f.ID != active.ID && f.ArticleID == active.ArticleID && f.FileCategory == active.FileCategory {
			f.IsActive = false
		}
	})
}

// RegistrationFor builds the record request for an uploaded file.
func RegistrationFor(articleID string, file *uploader.File, up *uploader.FileUpload, category models.FileCategory, round int) models.RegisterFileRequest {
	name := up.FileName
	if name == "" {
		name = file.Name
	}
	return models.RegisterFileRequest{
		ArticleID:    articleID,
		FileCategory: category,
		Round:        round,
		FileName:     name,
		OriginalName: file.Name,
		FileType:     file.ContentType,
		FileSize:     file.Size,
		FileURL:      up.FileURL,
	}
}

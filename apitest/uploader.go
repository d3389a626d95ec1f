package apitest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"journal-desk/models"
	"journal-desk/uploader"
)

// Uploader keeps uploads in memory and records deletions.
type Uploader struct {
	mu        sync.Mutex
	seq       int
	stored    map[string]*uploader.File
	deleted   []string
	failImage bool
	failFile  bool
}

func NewUploader() *Uploader {
	return &Uploader{stored: map[string]*uploader.File{}}
}

// FailImages makes image uploads fail until called with false.
func (u *Uploader) FailImages(fail bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failImage = fail
}

func (u *Uploader) FailFiles(fail bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failFile = fail
}

func (u *Uploader) UploadImage(_ context.Context, f *uploader.File, kind uploader.ImageKind) (*uploader.ImageUpload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failImage {
		return nil, &models.UploadError{Name: f.Name, Err: errors.New("image store unavailable")}
	}
	key := u.store(f, "images/"+string(kind))
	return &uploader.ImageUpload{
		SecureURL: "https://cdn.test/" + key,
		Blob:      uploader.Blob{Backend: "memory", Key: key},
	}, nil
}

func (u *Uploader) UploadFile(_ context.Context, f *uploader.File) (*uploader.FileUpload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failFile {
		return nil, &models.UploadError{Name: f.Name, Err: errors.New("file store unavailable")}
	}
	key := u.store(f, "files")
	return &uploader.FileUpload{
		FileURL:  "https://cdn.test/" + key,
		FileName: f.Name,
		Blob:     uploader.Blob{Backend: "memory", Key: key},
	}, nil
}

func (u *Uploader) Delete(_ context.Context, b uploader.Blob) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.stored, b.Key)
	u.deleted = append(u.deleted, b.Key)
	return nil
}

func (u *Uploader) store(f *uploader.File, prefix string) string {
	u.seq++
	key := fmt.Sprintf("%s/%d-%s", prefix, u.seq, f.Name)
	u.stored[key] = f
	return key
}

// Stored counts uploads that were not deleted.
func (u *Uploader) Stored() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.stored)
}

func (u *Uploader) Deleted() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.deleted...)
}

package uploader

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ImageKind selects the upload profile for an image.
type ImageKind string

const (
	ImageAvatar    ImageKind = "avatar"
	ImageThumbnail ImageKind = "thumbnail"
)

// Blob identifies an uploaded object for later removal.
type Blob struct {
	Backend     string `json:"backend"`
	Key         string `json:"key"`
	DeleteToken string `json:"-"`
}

type ImageUpload struct {
	SecureURL string `json:"secureUrl"`
	Blob      Blob   `json:"blob"`
}

type FileUpload struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Blob     Blob   `json:"blob"`
}

// Uploader stores binaries in a remote object store.
type Uploader interface {
	UploadImage(ctx context.Context, file *File, kind ImageKind) (*ImageUpload, error)
	UploadFile(ctx context.Context, file *File) (*FileUpload, error)
	Delete(ctx context.Context, blob Blob) error
}

// File is a binary staged in memory. ContentType is sniffed from the bytes.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

func NewFile(name string, data []byte) *File {
	return &File{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// sniffLen is how much of an oversized upload is read to detect its type.
const sniffLen = 3072

// FromMultipart reads an uploaded form file into memory, reading at most
// limit bytes when limit is positive. A larger file comes back with its name,
// size and sniffed type but no data, so the caller can reject it by size.
func FromMultipart(fh *multipart.FileHeader, limit int64) (*File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open upload")
	}
	defer f.Close()

	if limit > 0 && fh.Size > limit {
		head, err := io.ReadAll(io.LimitReader(f, sniffLen))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read upload")
		}
		return oversized(fh.Filename, fh.Size, head), nil
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if limit > 0 && int64(len(data)) > limit {
		return oversized(fh.Filename, int64(len(data)), data[:min(len(data), sniffLen)]), nil
	}
	file := NewFile(fh.Filename, data)
	file.Size = max(fh.Size, file.Size)
	return file, nil
}

func oversized(name string, size int64, head []byte) *File {
	return &File{Name: name, Size: size, ContentType: mimetype.Detect(head).String()}
}

// Ext is the lower-cased extension including the dot.
func (f *File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

func (f *File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

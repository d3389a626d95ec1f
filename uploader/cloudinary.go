package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"journal-desk/models"

	"github.com/pkg/errors"
)

const cloudinaryAPI = "https://api.cloudinary.com"

type CloudinaryConfig struct {
	CloudName       string
	AvatarPreset    string
	ThumbnailPreset string
	FilePreset      string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// Cloudinary uploads through unsigned presets. Uploads request a delete token
// so a fresh upload can be withdrawn without the account secret.
type Cloudinary struct {
	cfg    CloudinaryConfig
	client *http.Client
}

type cloudinaryResponse struct {
	SecureURL        string `json:"secure_url"`
	PublicID         string `json:"public_id"`
	OriginalFilename string `json:"original_filename"`
	Format           string `json:"format"`
	DeleteToken      string `json:"delete_token"`
	Error            *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinary(cfg CloudinaryConfig) *Cloudinary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = cloudinaryAPI
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Cloudinary{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Cloudinary) UploadImage(ctx context.Context, file *File, kind ImageKind) (*ImageUpload, error) {
	preset := c.cfg.ThumbnailPreset
	if kind == ImageAvatar {
		preset = c.cfg.AvatarPreset
	}
	res, err := c.upload(ctx, "image", preset, file)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{
		SecureURL: res.SecureURL,
		Blob:      Blob{Backend: "cloudinary", Key: res.PublicID, DeleteToken: res.DeleteToken},
	}, nil
}

func (c *Cloudinary) UploadFile(ctx context.Context, file *File) (*FileUpload, error) {
	res, err := c.upload(ctx, "raw", c.cfg.FilePreset, file)
	if err != nil {
		return nil, err
	}
	name := file.Name
	if name == "" {
		name = res.OriginalFilename
	}
	return &FileUpload{
		FileURL:  res.SecureURL,
		FileName: name,
		Blob:     Blob{Backend: "cloudinary", Key: res.PublicID, DeleteToken: res.DeleteToken},
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, blob Blob) error {
	if blob.DeleteToken == "" {
		return fmt.Errorf("no delete token for %s", blob.Key)
	}
	body := strings.NewReader(url.Values{"token": {blob.DeleteToken}}.Encode())
	endpoint := fmt.Sprintf("%s/v1_1/%s/delete_by_token", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "cloudinary delete")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary delete failed: %s", resp.Status)
	}
	return nil
}

func (c *Cloudinary) upload(ctx context.Context, resource, preset string, file *File) (*cloudinaryResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	if err := w.WriteField("upload_preset", preset); err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	if err := w.WriteField("return_delete_token", "true"); err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", c.cfg.BaseURL, c.cfg.CloudName, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[Cloudinary] upload %s failed: %v", file.Name, err)
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: err}
	}

	var res cloudinaryResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &models.UploadError{Name: file.Name, Err: fmt.Errorf("unexpected response: %s", resp.Status)}
	}
	if res.Error != nil {
		return nil, &models.UploadError{Name: file.Name, Err: errors.New(res.Error.Message)}
	}
	if resp.StatusCode >= 300 || res.SecureURL == "" {
		return nil, &models.UploadError{Name: file.Name, Err: fmt.Errorf("no secure url in response (%s)", resp.Status)}
	}
	return &res, nil
}

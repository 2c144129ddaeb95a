package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hugo-micropub/pkg/models"

	"github.com/gabriel-vasile/mimetype"
)

// MediaStore saves uploaded files under the configured media directory and
// hands back the public URL to reference them with.
type MediaStore struct {
	cfg *models.SiteConfig
}

func NewMediaStore(cfg *models.SiteConfig) *MediaStore {
	return &MediaStore{cfg: cfg}
}

// MediaFile describes one stored upload.
type MediaFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Save stores one multipart upload. Filenames are de-spaced and timestamped
// so repeat uploads never collide; files without a usable extension get one
// sniffed from their content.
func (m *MediaStore) Save(header *multipart.FileHeader) (*MediaFile, error) {
	if m.cfg.MediaDir == "" {
		return nil, badRequest("invalid_request", "No media directory is configured.")
	}

	src, err := header.Open()
	if err != nil {
		return nil, badRequest("file_error", "Unable to read the uploaded file.")
	}
	defer src.Close()

	filename := strings.ReplaceAll(filepath.Base(header.Filename), " ", "_")
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	if ext == "" {
		mtype, merr := mimetype.DetectReader(src)
		if merr != nil {
			return nil, badRequest("file_error", "Unable to inspect the uploaded file.")
		}
		ext = mtype.Extension()
		if _, serr := src.Seek(0, io.SeekStart); serr != nil {
			return nil, badRequest("file_error", "Unable to read the uploaded file.")
		}
	}
	filename = fmt.Sprintf("%s_%d%s", name, time.Now().Unix(), ext)

	fullPath := SafeJoin(m.cfg.SourcePath, m.cfg.MediaDir, filename)
	if fullPath == "" {
		return nil, badRequest("invalid_request", "Invalid media path.")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, badRequest("cannot_mkdir", "The media directory could not be created.")
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, badRequest("file_error", "Unable to store the uploaded file.")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return nil, badRequest("file_error", "Unable to store the uploaded file.")
	}

	return &MediaFile{
		Name: filename,
		Size: header.Size,
		URL:  m.cfg.BaseURL + strings.TrimPrefix(m.cfg.MediaURL, "/") + filename,
	}, nil
}

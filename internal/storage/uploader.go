package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxUploadSize     = 10 << 20
	MaxImageSize      = 5 << 20
	MaxFilesPerUpload = 10
)

var (
	ErrUnsupportedType = errors.New("storage: unsupported file type")
	ErrTooLarge        = errors.New("storage: file too large")
)

var allowedTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"image/webp":         ".webp",
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// Upload is one received file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader validates uploads, names them and hands them to a Store.
type Uploader struct {
	store  Store
	logger *zap.Logger
}

func NewUploader(store Store, logger *zap.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

func (u *Uploader) Store() Store {
	return u.store
}

// ContentType trusts the sniffed type for images and PDFs and the declared
// type otherwise, since Word documents sniff as generic zip/binary.
func ContentType(up Upload) string {
	sniffed := http.DetectContentType(up.Data)
	if _, ok := allowedTypes[sniffed]; ok {
		return sniffed
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	if strings.HasPrefix(declared, "image/") || declared == "application/pdf" {
		return sniffed
	}
	return declared
}

// DirectoryFor picks the generic folder for a content type.
func DirectoryFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "images"
	case contentType == "application/pdf", strings.Contains(contentType, "word"):
		return "documents"
	}
	return "misc"
}

// Save stores any allowed file. Images other than GIF are re-encoded as WebP.
func (u *Uploader) Save(ctx context.Context, dir string, up Upload) (Object, error) {
	if len(up.Data) > MaxUploadSize {
		return Object{}, ErrTooLarge
	}
	ct := ContentType(up)
	ext, ok := allowedTypes[ct]
	if !ok {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	if strings.HasPrefix(ct, "image/") && ct != "image/gif" {
		return u.saveImage(ctx, dir, up)
	}
	return u.store.Save(ctx, dir, uuid.NewString()+ext, up.Data, ct)
}

// SaveImage accepts images only, up to maxSize bytes.
func (u *Uploader) SaveImage(ctx context.Context, dir string, up Upload, maxSize int) (Object, error) {
	if len(up.Data) > maxSize {
		return Object{}, ErrTooLarge
	}
	ct := ContentType(up)
	if _, ok := allowedTypes[ct]; !ok || !strings.HasPrefix(ct, "image/") {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	if ct == "image/gif" {
		return u.store.Save(ctx, dir, uuid.NewString()+".gif", up.Data, ct)
	}
	return u.saveImage(ctx, dir, up)
}

// SaveRaw stores the bytes unchanged, keeping the original extension.
func (u *Uploader) SaveRaw(ctx context.Context, dir string, up Upload) (Object, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if ext == "" {
		ext = allowedTypes[ContentType(up)]
	}
	return u.store.Save(ctx, dir, uuid.NewString()+ext, up.Data, ContentType(up))
}

// Remove deletes the object behind a URL returned earlier. Missing objects are ignored.
func (u *Uploader) Remove(ctx context.Context, url string) {
	key, ok := KeyFromURL(url)
	if !ok {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		u.logger.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}

func (u *Uploader) saveImage(ctx context.Context, dir string, up Upload) (Object, error) {
	optimized, err := OptimizeImage(up.Data, MaxImageDimension)
	if err != nil {
		u.logger.Warn("image optimisation failed, storing original",
			zap.String("filename", up.Filename), zap.Error(err))
		return u.SaveRaw(ctx, dir, up)
	}
	return u.store.Save(ctx, dir, uuid.NewString()+".webp", optimized, "image/webp")
}

// Package imageupload stores uploaded images under random names in the
// configured file storage and reports their type, size and dimensions.
package imageupload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
	"go.uber.org/zap"
)

// Upload failures a caller reports back to the user.
var (
	ErrUnsupportedType = errors.New("Unsupported image mime type.")
	ErrEmpty           = errors.New("No file was uploaded.")
)

// TooLargeError is returned when a file exceeds the caller's limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File exceeds %dMB limit.", e.Limit>>20)
}

// Supported mime types and the extension files of that type are stored with.
const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	WebP = "image/webp"
	SVG  = "image/svg+xml"
	Icon = "image/x-icon"
)

var extensions = map[string]string{
	JPEG: "jpg",
	PNG:  "png",
	WebP: "webp",
	SVG:  "svg",
	Icon: "ico",
}

// PathPrefix is the public URL prefix uploaded images are served under.
const PathPrefix = "/images/"

// File describes a stored upload.
type File struct {
	Filename  string
	MimeType  string
	SizeBytes int64
	Width     *int
	Height    *int
}

// Path returns the public path of the file.
func (f File) Path() string { return PathPrefix + f.Filename }

// Uploader writes images to a storage backend.
type Uploader struct {
	store  storage.Store
	logger *zap.Logger
}

func New(store storage.Store, logger *zap.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

// Upload reads at most maxBytes from r, checks the sniffed type against
// allowed and stores the file. declared is the client-sent content type; it
// is only consulted for SVG, which content sniffing reports as text.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, declared string, maxBytes int64, allowed ...string) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return File{}, ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return File{}, &TooLargeError{Limit: maxBytes}
	}

	mimeType := Sniff(data, declared)
	if !contains(allowed, mimeType) {
		return File{}, ErrUnsupportedType
	}

	f := File{
		Filename:  strings.ReplaceAll(uuid.NewString(), "-", "") + "." + extensions[mimeType],
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		f.Width, f.Height = &cfg.Width, &cfg.Height
	}

	if err := u.store.Put(ctx, f.Filename, bytes.NewReader(data), &storage.PutOptions{ContentType: mimeType}); err != nil {
		return File{}, fmt.Errorf("store upload: %w", err)
	}
	u.logger.Debug("image stored",
		zap.String("filename", f.Filename),
		zap.String("mime_type", mimeType),
		zap.Int64("size_bytes", f.SizeBytes))
	return f, nil
}

// Remove deletes a stored file. A missing file is logged, not returned.
func (u *Uploader) Remove(ctx context.Context, filename string) {
	if err := u.store.Delete(ctx, filename); err != nil {
		u.logger.Warn("failed to remove image", zap.String("filename", filename), zap.Error(err))
	}
}

// Sniff returns the mime type of data.
func Sniff(data []byte, declared string) string {
	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if strings.HasPrefix(mimeType, "text/") && strings.EqualFold(declared, SVG) && bytes.Contains(data, []byte("<svg")) {
		return SVG
	}
	return mimeType
}

// UserMessage returns the message to show for a rejected upload, or false
// when err is an internal failure.
func UserMessage(err error) (string, bool) {
	var tooLarge *TooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return tooLarge.Error(), true
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrEmpty):
		return err.Error(), true
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

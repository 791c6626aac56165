// Package media manages the image library used by page sections.
package media

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	mediastore "github.com/dalemusser/stratasite/internal/app/store/media"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/imageupload"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxUploadBytes caps a single media upload.
const MaxUploadBytes = 5 << 20

const (
	msgNotFound     = "Media not found."
	msgFileRequired = "File is required."
)

var uploadTypes = []string{imageupload.JPEG, imageupload.PNG, imageupload.WebP}

type Handler struct {
	store       *mediastore.Store
	uploader    *imageupload.Uploader
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

func NewHandler(db *mongo.Database, uploader *imageupload.Uploader, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       mediastore.New(db),
		uploader:    uploader,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// PublicRoutes is mounted at /api/media. The public gallery is not built yet.
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		jsonutil.OK(w, map[string]any{"message": "Not implemented yet", "items": []any{}})
	})
	return r
}

// AdminRoutes is mounted at /api/admin/media.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.upload)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type mediaResponse struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	Path         string  `json:"path"`
	OriginalName string  `json:"originalName"`
	Alt          *string `json:"alt"`
	MimeType     string  `json:"mimeType"`
	SizeBytes    int64   `json:"sizeBytes"`
	Width        *int    `json:"width"`
	Height       *int    `json:"height"`
	UploadedAt   string  `json:"uploadedAt"`
}

func newMediaResponse(m models.Media) mediaResponse {
	return mediaResponse{
		ID:           m.ID.Hex(),
		Filename:     m.Filename,
		Path:         models.ImagePath(m.Filename),
		OriginalName: m.OriginalName,
		Alt:          m.Alt,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		Width:        m.Width,
		Height:       m.Height,
		UploadedAt:   jsonutil.Time(m.UploadedAt),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list media", err)
		return
	}
	items := make([]mediaResponse, 0, len(list))
	for _, m := range list {
		items = append(items, newMediaResponse(m))
	}
	jsonutil.OK(w, map[string]any{"items": items})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadBytes + 1<<20); err != nil {
		jsonutil.ValidationError(w, map[string]string{"file": msgFileRequired})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.ValidationError(w, map[string]string{"file": msgFileRequired})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stored, err := h.uploader.Upload(ctx, file, header.Header.Get("Content-Type"), MaxUploadBytes, uploadTypes...)
	if err != nil {
		if msg, ok := imageupload.UserMessage(err); ok {
			jsonutil.ValidationError(w, map[string]string{"file": msg})
			return
		}
		h.errLog.Internal(w, r, "failed to store media", err)
		return
	}

	m := models.Media{
		Filename:     stored.Filename,
		OriginalName: filepath.Base(header.Filename),
		MimeType:     stored.MimeType,
		SizeBytes:    stored.SizeBytes,
		Width:        stored.Width,
		Height:       stored.Height,
	}
	if alt := strings.TrimSpace(r.FormValue("alt")); alt != "" {
		m.Alt = &alt
	}

	saved, err := h.store.Create(ctx, m)
	if err != nil {
		h.uploader.Remove(ctx, stored.Filename)
		h.errLog.Internal(w, r, "failed to save media", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventMediaUploaded, map[string]string{
		"media_id": saved.ID.Hex(),
		"filename": saved.Filename,
	})
	jsonutil.Created(w, newMediaResponse(saved))
}

func mediaID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// update changes the alt text. A null alt clears it; an absent key leaves
// the record untouched.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaID(w, r)
	if !ok {
		return
	}
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var m models.Media
	if raw, present := p["alt"]; present {
		var alt *string
		if raw != nil {
			s := strings.TrimSpace(cast.ToString(raw))
			alt = &s
		}
		m, err = h.store.SetAlt(ctx, id, alt)
	} else {
		m, err = h.store.GetByID(ctx, id)
	}
	if errors.Is(err, mediastore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to update media", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventMediaUpdated, map[string]string{"media_id": id.Hex()})
	jsonutil.OK(w, newMediaResponse(m))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.store.GetByID(ctx, id)
	if errors.Is(err, mediastore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load media", err)
		return
	}

	if err := h.store.Delete(ctx, id); err != nil && !errors.Is(err, mediastore.ErrNotFound) {
		h.errLog.Internal(w, r, "failed to delete media", err)
		return
	}
	h.uploader.Remove(ctx, m.Filename)

	h.auditLogger.Admin(r, audit.EventMediaDeleted, map[string]string{
		"media_id": id.Hex(),
		"filename": m.Filename,
	})
	jsonutil.NoContent(w)
}

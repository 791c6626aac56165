// internal/app/features/settings/settings.go
package settings

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/imageupload"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/settingspatch"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxAssetBytes caps logo and favicon uploads.
const MaxAssetBytes = 2 << 20

const msgFileRequired = "File is required."

var assetTypes = []string{
	imageupload.JPEG,
	imageupload.PNG,
	imageupload.WebP,
	imageupload.SVG,
	imageupload.Icon,
}

// Handler provides the admin settings endpoints.
type Handler struct {
	settingsStore *settingsstore.Store
	sync          *contactsync.Synchronizer
	uploader      *imageupload.Uploader
	errLog        *errorsfeature.ErrorLogger
	auditLogger   *auditlog.Logger
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler creates a new settings Handler.
func NewHandler(
	db *mongo.Database,
	sync *contactsync.Synchronizer,
	uploader *imageupload.Uploader,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		settingsStore: settingsstore.New(db),
		sync:          sync,
		uploader:      uploader,
		errLog:        errLog,
		auditLogger:   auditLogger,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Routes returns the admin settings router, mounted at /api/admin/settings.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Put("/", h.update)
	r.Post("/", h.update)
	r.Post("/logo", h.uploadAsset("logo"))
	r.Post("/favicon", h.uploadAsset("favicon"))
	return r
}

// show returns the settings, creating the defaults on first use.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.settingsStore.GetOrCreate(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load settings", err)
		return
	}
	jsonutil.OK(w, settingspatch.Normalize(settings))
}

// update merges a partial payload, saves it and mirrors the contact
// namespace onto the contact page.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	payload, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	settings, err := h.settingsStore.GetOrCreate(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load settings", err)
		return
	}

	if err := settingspatch.Apply(settings, payload, h.now()); err != nil {
		var perr *settingspatch.Error
		if errors.As(err, &perr) {
			jsonutil.ValidationError(w, perr.Fields())
			return
		}
		h.errLog.Internal(w, r, "failed to apply settings", err)
		return
	}
	h.stampEditor(r, settings)

	if err := h.settingsStore.Save(ctx, *settings); err != nil {
		h.errLog.Internal(w, r, "failed to save settings", err)
		return
	}

	if rep, err := h.sync.FromSettings(ctx, settings); err != nil {
		h.logger.Warn("settings to contact page sync failed", zap.Error(err))
	} else {
		h.logger.Debug("settings to contact page sync",
			zap.Bool("infos_applied", rep.Infos.Applied),
			zap.Bool("map_applied", rep.Map.Applied))
	}

	h.auditLogger.Admin(r, audit.EventSettingsUpdated, map[string]string{"namespaces": namespaces(payload)})
	jsonutil.OK(w, settingspatch.Normalize(settings))
}

// uploadAsset stores a logo or favicon and points general.<kind> at it.
func (h *Handler) uploadAsset(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxAssetBytes + 1<<20); err != nil {
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

		stored, err := h.uploader.Upload(ctx, file, header.Header.Get("Content-Type"), MaxAssetBytes, assetTypes...)
		if err != nil {
			if msg, ok := imageupload.UserMessage(err); ok {
				jsonutil.ValidationError(w, map[string]string{"file": msg})
				return
			}
			h.errLog.Internal(w, r, "failed to store "+kind, err)
			return
		}

		settings, err := h.settingsStore.GetOrCreate(ctx)
		if err != nil {
			h.uploader.Remove(ctx, stored.Filename)
			h.errLog.Internal(w, r, "failed to load settings", err)
			return
		}
		general := settings.GeneralOrDefault()
		path := stored.Path()
		if kind == "favicon" {
			general.Favicon = &path
		} else {
			general.Logo = &path
		}
		settings.General = &general
		settings.UpdatedAt = h.now()
		h.stampEditor(r, settings)

		if err := h.settingsStore.Save(ctx, *settings); err != nil {
			h.uploader.Remove(ctx, stored.Filename)
			h.errLog.Internal(w, r, "failed to save settings", err)
			return
		}

		h.auditLogger.Admin(r, audit.EventSettingsAssetUploaded, map[string]string{"kind": kind, "path": path})
		jsonutil.OK(w, map[string]string{"path": path})
	}
}

func (h *Handler) stampEditor(r *http.Request, s *models.SiteSettings) {
	if u, ok := auth.CurrentUser(r); ok {
		id := u.UserID()
		s.UpdatedByID = &id
		s.UpdatedByName = u.Name
	}
}

func namespaces(payload map[string]any) string {
	out := ""
	for _, ns := range []string{"general", "contact", "hours", "social", "booking", "appearance", "footer", "navigation"} {
		if _, ok := payload[ns]; ok {
			if out != "" {
				out += ","
			}
			out += ns
		}
	}
	return out
}

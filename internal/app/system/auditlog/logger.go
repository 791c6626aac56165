// Package auditlog records sign-in and back-office events to the audit
// store, the application log, or both, per category.
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/store/audit"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/network"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Modes accepted for each category. Anything else behaves as ModeAll.
const (
	ModeAll = "all"
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

type Config struct {
	Auth  string // login, logout and registration
	Admin string // content, settings, services and media changes
}

// Store is the persistence side of a Logger. *audit.Store implements it.
type Store interface {
	Log(ctx context.Context, e audit.Event) error
}

type sinks struct{ db, log bool }

func sinksFor(mode string) sinks {
	switch mode {
	case ModeOff:
		return sinks{}
	case ModeDB:
		return sinks{db: true}
	case ModeLog:
		return sinks{log: true}
	default:
		return sinks{db: true, log: true}
	}
}

// Logger is safe to use as a nil pointer; every method is then a no-op.
type Logger struct {
	store  Store
	zapLog *zap.Logger
	routes map[string]sinks
}

// New accepts a nil store, which turns database recording off.
func New(store Store, zapLog *zap.Logger, cfg Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		routes: map[string]sinks{
			audit.CategoryAuth:  sinksFor(cfg.Auth),
			audit.CategoryAdmin: sinksFor(cfg.Admin),
		},
	}
}

// Log routes e by category. Store failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	to, ok := l.routes[e.Category]
	if !ok {
		to = sinksFor(ModeAll)
	}
	if to.log {
		l.write(e)
	}
	if to.db && l.store != nil {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("store audit event", zap.String("event_type", e.EventType), zap.Error(err))
		}
	}
}

func (l *Logger) write(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.UserID != nil {
		fields = append(fields, zap.Stringer("user_id", e.UserID))
	}
	if e.ActorID != nil {
		fields = append(fields, zap.Stringer("actor_id", e.ActorID))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	level := zap.InfoLevel
	if !e.Success {
		level = zap.WarnLevel
	}
	l.zapLog.Log(level, "audit event", fields...)
}

func fromRequest(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

func (l *Logger) LoginSuccess(r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(r.Context(), e)
}

// LoginFailed records a refused login; eventType doubles as the failure
// reason. userID is nil when no account matched.
func (l *Logger) LoginFailed(r *http.Request, userID *primitive.ObjectID, eventType, email string) {
	e := fromRequest(r, audit.CategoryAuth, eventType)
	e.UserID = userID
	e.Success = false
	e.FailureReason = eventType
	e.Details = map[string]string{"email": email}
	l.Log(r.Context(), e)
}

func (l *Logger) Logout(r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout)
	e.UserID = &userID
	l.Log(r.Context(), e)
}

// AdminRegistered records the one-time registration of the first admin.
func (l *Logger) AdminRegistered(r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventAdminRegistered)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(r.Context(), e)
}

// Admin records a back-office change by the signed-in admin. Calls made
// with the API key have no actor and are tagged via=api_key.
func (l *Logger) Admin(r *http.Request, eventType string, details map[string]string) {
	e := fromRequest(r, audit.CategoryAdmin, eventType)
	e.Details = details
	if u, ok := auth.CurrentUser(r); ok && !u.UserID().IsZero() {
		id := u.UserID()
		e.ActorID = &id
	} else {
		e.Details = make(map[string]string, len(details)+1)
		for k, v := range details {
			e.Details[k] = v
		}
		e.Details["via"] = "api_key"
	}
	l.Log(r.Context(), e)
}

// Package handlers implements the pages of the panel.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/campaign"
	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/mailbox"
	"github.com/foxzi/leadboard/internal/models"
	"github.com/foxzi/leadboard/internal/records"
	"github.com/foxzi/leadboard/internal/session"
	"github.com/foxzi/leadboard/internal/web/middleware"
	"github.com/foxzi/leadboard/internal/web/notify"
	"github.com/foxzi/leadboard/internal/web/views"
)

// Deps are the collaborators of the handlers
type Deps struct {
	Logger *slog.Logger
	Views  *views.Engine
	// API is the backend client used by requests without a session
	API       *apiclient.Client
	LeadSwift *leadswift.Client
	Campaigns *campaign.Store
	Mailbox   *mailbox.Checker
	Audit     *audit.Store
	Formatter *records.Formatter
	// Notify defaults to session flashes
	Notify notify.Factory
	// Now defaults to time.Now
	Now func() time.Time
}

type Handlers struct {
	logger    *slog.Logger
	views     *views.Engine
	api       *apiclient.Client
	leadswift *leadswift.Client
	campaigns *campaign.Store
	mailbox   *mailbox.Checker
	audit     *audit.Store
	format    *records.Formatter
	notify    notify.Factory
	now       func() time.Time
}

func New(d Deps) *Handlers {
	h := &Handlers{
		logger:    d.Logger,
		views:     d.Views,
		api:       d.API,
		leadswift: d.LeadSwift,
		campaigns: d.Campaigns,
		mailbox:   d.Mailbox,
		audit:     d.Audit,
		format:    d.Formatter,
		notify:    d.Notify,
		now:       d.Now,
	}
	if h.notify == nil {
		h.notify = notify.FromSession
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.format == nil {
		h.format = records.NewFormatter(time.UTC, "US")
	}
	if h.campaigns == nil {
		h.campaigns = campaign.NewStore()
	}
	return h
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Loading is the placeholder shown while a session is being restored
func (h *Handlers) Loading(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "loading", map[string]any{"Title": "Loading"})
}

// NotFound renders the 404 page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderStatus(w, r, http.StatusNotFound, "notfound", h.page(r, "Not Found", ""))
}

// client returns the backend client carrying the browser session's credentials
func (h *Handlers) client(r *http.Request) *apiclient.Client {
	if s := session.FromContext(r.Context()); s != nil {
		return s.Client()
	}
	return h.api
}

func (h *Handlers) user(r *http.Request) *models.User {
	if s := session.FromContext(r.Context()); s != nil {
		return s.User()
	}
	return nil
}

func (h *Handlers) notifier(r *http.Request) notify.Notifier {
	return h.notify(r)
}

// page returns the data shared by every layout page. Flashes are consumed
// here, so notifications must be queued before calling it.
func (h *Handlers) page(r *http.Request, title, active string) map[string]any {
	var flashes []session.Flash
	if s := session.FromContext(r.Context()); s != nil {
		flashes = s.Flashes()
	}
	return map[string]any{
		"Title":     title,
		"Active":    active,
		"Resources": records.All(),
		"User":      h.user(r),
		"Flashes":   flashes,
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus renders into a buffer first so a template error still
// produces a clean 500
func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "path", r.URL.Path, "error", err)
		h.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Helper for JSON responses
func (h *Handlers) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

// Helper for errors
func (h *Handlers) error(w http.ResponseWriter, status int, message string) {
	h.logger.Error("request error", "status", status, "message", message)
	http.Error(w, message, status)
}

func (h *Handlers) apiError(w http.ResponseWriter, status int, message string) {
	h.json(w, status, map[string]string{"message": message})
}

// record writes an audit entry for the current user
func (h *Handlers) record(r *http.Request, action, entityType, entityID string, details map[string]any) {
	e := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  middleware.ClientIP(r),
	}
	if u := h.user(r); u != nil {
		e.UserEmail = u.Email
	}
	h.audit.Record(r.Context(), e)
}

// pageOf describes page number of a list of total items stored elsewhere
func pageOf(number, size, total int) records.Page {
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number > pages {
		number = pages
	}
	p := records.Page{Number: number, Size: size, Total: total, Pages: pages}
	if total > 0 {
		p.From = (number-1)*size + 1
		p.To = min(number*size, total)
	}
	return p
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/dashboard"
	"github.com/foxzi/leadboard/internal/models"
)

// Dashboard shows the outreach metrics for the selected date range
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := h.notifier(r)

	rng, err := h.dashboardRange(r)
	if err != nil {
		n.Warning(err.Error())
		rng = dashboard.Range{Preset: dashboard.PresetAll}
	}

	m, err := h.loadMetrics(r, rng)
	if err != nil {
		h.logger.Error("failed to load dashboard", "error", err)
		n.Error(apiclient.Message(err, "Failed to load dashboard data"))
	}

	data := h.page(r, "Dashboard", "dashboard")
	data["Metrics"] = m
	data["Range"] = rng
	data["Presets"] = dashboard.Presets
	data["From"] = q.Get("from")
	data["To"] = q.Get("to")
	h.render(w, r, "dashboard", data)
}

type dashboardResponse struct {
	Preset        string            `json:"preset"`
	DateFrom      string            `json:"dateFrom,omitempty"`
	DateTo        string            `json:"dateTo,omitempty"`
	Metrics       dashboard.Metrics `json:"metrics"`
	OpenRate      float64           `json:"openRate"`
	ReplyRate     float64           `json:"replyRate"`
	ProcessedRate float64           `json:"processedRate"`
}

// DashboardAPI returns the dashboard metrics as JSON
func (h *Handlers) DashboardAPI(w http.ResponseWriter, r *http.Request) {
	rng, err := h.dashboardRange(r)
	if err != nil {
		h.apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.loadMetrics(r, rng)
	if err != nil {
		h.logger.Error("failed to load dashboard", "error", err)
		h.apiError(w, http.StatusBadGateway, apiclient.Message(err, "Failed to load dashboard data"))
		return
	}

	q := rng.Query()
	h.json(w, http.StatusOK, map[string]any{
		"data": dashboardResponse{
			Preset:        rng.Preset,
			DateFrom:      q.Get("dateFrom"),
			DateTo:        q.Get("dateTo"),
			Metrics:       m,
			OpenRate:      m.OpenRate(),
			ReplyRate:     m.ReplyRate(),
			ProcessedRate: m.ProcessedRate(),
		},
	})
}

func (h *Handlers) dashboardRange(r *http.Request) (dashboard.Range, error) {
	q := r.URL.Query()
	rng, err := dashboard.RangeFor(q.Get("range"), h.now().In(h.format.Location), q.Get("from"), q.Get("to"))
	if errors.Is(err, dashboard.ErrUnknownPreset) {
		return dashboard.Range{Preset: dashboard.PresetAll}, err
	}
	return rng, err
}

func (h *Handlers) loadMetrics(r *http.Request, rng dashboard.Range) (dashboard.Metrics, error) {
	c := h.client(r)
	return dashboard.Load(r.Context(), backend.Leads[models.Lead](c), backend.Emails[models.Email](c), rng)
}

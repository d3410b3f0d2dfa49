package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/records"
	"github.com/foxzi/leadboard/internal/web/views"
)

// Searches lists the LeadSwift searches of a campaign
func (h *Handlers) Searches(w http.ResponseWriter, r *http.Request) {
	campaignID := strings.TrimSpace(r.URL.Query().Get("campaign"))

	var (
		searches []leadswift.SearchSummary
		errMsg   string
	)
	if campaignID != "" {
		var err error
		searches, err = h.leadswift.FindSearches(r.Context(), campaignID)
		switch {
		case errors.Is(err, leadswift.ErrNotConfigured):
			errMsg = err.Error()
		case err != nil:
			h.logger.Error("failed to load searches", "campaign", campaignID, "error", err)
			h.notifier(r).Error(searchError(err, "Failed to load searches"))
		}
	}

	data := h.page(r, "Searches", "searches")
	data["CampaignID"] = campaignID
	data["Campaigns"] = h.campaigns.List("")
	data["Searches"] = searches
	data["Error"] = errMsg
	h.render(w, r, "searches", data)
}

// searchPageSize is the number of leads per page of a search
const searchPageSize = 10

// SearchDetail shows the leads found by a search, filtered by q
func (h *Handlers) SearchDetail(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "id")
	q := r.URL.Query()
	campaignID := q.Get("campaign")
	query := strings.TrimSpace(q.Get("q"))
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	var errMsg string
	leads, err := h.leadswift.LeadsForSearch(r.Context(), searchID)
	switch {
	case errors.Is(err, leadswift.ErrNotConfigured):
		errMsg = err.Error()
	case err != nil:
		h.logger.Error("failed to load search leads", "search", searchID, "error", err)
		h.notifier(r).Error(searchError(err, "Failed to load leads"))
	}

	items, pg := records.Paginate(FilterLeads(leads, query), page, searchPageSize)
	path := "/search/" + url.PathEscape(searchID)

	back := url.Values{}
	if campaignID != "" {
		back.Set("campaign", campaignID)
	}

	data := h.page(r, "Search "+searchID, "searches")
	data["SearchID"] = searchID
	data["CampaignID"] = campaignID
	data["BackQuery"] = back.Encode()
	data["Query"] = query
	data["Leads"] = items
	data["Resource"] = records.Leads
	data["Error"] = errMsg
	data["Pager"] = views.NewPager(path, pg, func(n int) string {
		v := url.Values{}
		if campaignID != "" {
			v.Set("campaign", campaignID)
		}
		if query != "" {
			v.Set("q", query)
		}
		v.Set("page", strconv.Itoa(n))
		return v.Encode()
	})
	h.render(w, r, "search_detail", data)
}

// SearchSync asks LeadSwift to store the leads of a search in the database
func (h *Handlers) SearchSync(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "id")
	campaignID := r.FormValue("campaign")
	n := h.notifier(r)

	count, err := h.leadswift.SyncLeads(r.Context(), searchID)
	switch {
	case err != nil:
		h.logger.Error("failed to sync leads", "search", searchID, "error", err)
		n.Error(searchError(err, "Failed to sync leads"))
	case count == 0:
		n.Info("No leads to sync")
	default:
		h.logger.Info("synced search leads", "search", searchID, "count", count)
		h.record(r, audit.ActionSync, "search", searchID, map[string]any{"count": count})
		n.Success(fmt.Sprintf("Synced %d leads to database", count))
	}

	target := "/search/" + url.PathEscape(searchID)
	if campaignID != "" {
		target += "?" + url.Values{"campaign": {campaignID}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// FilterLeads keeps leads whose name, email, company or status contains
// query, case-insensitively. An empty query keeps every lead.
func FilterLeads(leads []leadswift.Lead, query string) []leadswift.Lead {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return leads
	}
	var out []leadswift.Lead
	for _, l := range leads {
		for _, v := range []string{l.Name, l.Email, l.Company, l.Status} {
			if strings.Contains(strings.ToLower(v), query) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

func searchError(err error, fallback string) string {
	if errors.Is(err, leadswift.ErrNotConfigured) || errors.Is(err, leadswift.ErrUnrecognizedShape) {
		return err.Error()
	}
	return apiclient.Message(err, fallback)
}

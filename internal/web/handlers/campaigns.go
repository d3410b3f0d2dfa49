package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/campaign"
	"github.com/foxzi/leadboard/internal/models"
)

// CampaignsList shows all campaigns matching the optional q search
func (h *Handlers) CampaignsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := h.page(r, "Campaigns", "campaigns")
	data["Campaigns"] = h.campaigns.List(query)
	data["Query"] = query
	h.render(w, r, "campaigns_list", data)
}

// CampaignsNew shows the new campaign form
func (h *Handlers) CampaignsNew(w http.ResponseWriter, r *http.Request) {
	h.renderCampaignForm(w, r, http.StatusOK, campaign.CreateInput{Type: campaign.Types[0]}, "")
}

// CampaignsCreate creates a draft campaign
func (h *Handlers) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.error(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	in := campaign.CreateInput{
		Name:        strings.TrimSpace(r.PostForm.Get("name")),
		Type:        r.PostForm.Get("type"),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		StartDate:   r.PostForm.Get("start_date"),
		EndDate:     r.PostForm.Get("end_date"),
	}

	c, err := h.campaigns.Create(in)
	if err != nil {
		h.renderCampaignForm(w, r, http.StatusUnprocessableEntity, in, err.Error())
		return
	}

	h.logger.Info("campaign created", "id", c.ID, "name", c.Name)
	h.record(r, audit.ActionCreate, "campaign", c.ID, map[string]any{"name": c.Name})
	h.notifier(r).Success("Campaign created successfully")
	http.Redirect(w, r, "/campaigns/"+c.ID, http.StatusSeeOther)
}

// CampaignsView shows a campaign with its saved searches
func (h *Handlers) CampaignsView(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	h.renderCampaign(w, r, http.StatusOK, c, campaign.SearchInput{}, "")
}

// CampaignsAddSearch saves a search under a campaign
func (h *Handlers) CampaignsAddSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.campaigns.Get(id)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.error(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	in := campaign.SearchInput{
		Name:        strings.TrimSpace(r.PostForm.Get("name")),
		Keywords:    strings.TrimSpace(r.PostForm.Get("keywords")),
		Location:    strings.TrimSpace(r.PostForm.Get("location")),
		Industry:    r.PostForm["industry"],
		CompanySize: r.PostForm["company_size"],
		Note:        strings.TrimSpace(r.PostForm.Get("note")),
	}

	s, err := h.campaigns.AddSearch(id, in)
	if err != nil {
		h.renderCampaign(w, r, http.StatusUnprocessableEntity, c, in, err.Error())
		return
	}

	h.record(r, audit.ActionCampaign, "campaign", id, map[string]any{"search": s.Name})
	h.notifier(r).Success("Search created successfully")
	http.Redirect(w, r, "/campaigns/"+id, http.StatusSeeOther)
}

// CampaignsPause pauses an active campaign
func (h *Handlers) CampaignsPause(w http.ResponseWriter, r *http.Request) {
	h.campaignTransition(w, r, "pause", h.campaigns.Pause, "Campaign paused")
}

// CampaignsResume resumes a paused campaign
func (h *Handlers) CampaignsResume(w http.ResponseWriter, r *http.Request) {
	h.campaignTransition(w, r, "resume", h.campaigns.Resume, "Campaign resumed")
}

func (h *Handlers) campaignTransition(w http.ResponseWriter, r *http.Request, action string, fn func(string) (models.Campaign, error), done string) {
	id := chi.URLParam(r, "id")
	n := h.notifier(r)

	_, err := fn(id)
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		h.NotFound(w, r)
		return
	case err != nil:
		n.Error(err.Error())
	default:
		h.record(r, audit.ActionCampaign, "campaign", id, map[string]any{"action": action})
		n.Success(done)
	}
	http.Redirect(w, r, "/campaigns", http.StatusSeeOther)
}

// CampaignsDelete removes a draft campaign
func (h *Handlers) CampaignsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n := h.notifier(r)

	err := h.campaigns.Delete(id)
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		h.NotFound(w, r)
		return
	case err != nil:
		n.Error(err.Error())
	default:
		h.record(r, audit.ActionDelete, "campaign", id, nil)
		n.Success("Campaign deleted")
	}
	http.Redirect(w, r, "/campaigns", http.StatusSeeOther)
}

func (h *Handlers) renderCampaignForm(w http.ResponseWriter, r *http.Request, status int, in campaign.CreateInput, errMsg string) {
	data := h.page(r, "New Campaign", "campaigns")
	data["Types"] = campaign.Types
	data["Values"] = in
	data["Error"] = errMsg
	h.renderStatus(w, r, status, "campaigns_new", data)
}

func (h *Handlers) renderCampaign(w http.ResponseWriter, r *http.Request, status int, c models.Campaign, in campaign.SearchInput, errMsg string) {
	data := h.page(r, c.Name, "campaigns")
	data["Campaign"] = c
	data["Searches"] = h.campaigns.Searches(c.ID)
	data["Industries"] = campaign.Industries
	data["CompanySizes"] = campaign.CompanySizes
	data["Search"] = in
	data["Error"] = errMsg
	h.renderStatus(w, r, status, "campaigns_detail", data)
}

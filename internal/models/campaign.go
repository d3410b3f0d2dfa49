package models

import "time"

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusPaused    = "paused"
)

// Campaign is a named outreach effort grouping searches and leads.
// Campaigns are kept in process memory only.
type Campaign struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	Description  string    `json:"description,omitempty"`
	StartDate    string    `json:"startDate,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
	Sent         int       `json:"sent"`
	Opened       int       `json:"opened"`
	Replied      int       `json:"replied"`
	Bounced      int       `json:"bounced"`
	Unsubscribed int       `json:"unsubscribed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OpenRate returns opened/sent as a percentage
func (c Campaign) OpenRate() float64 {
	return percent(c.Opened, c.Sent)
}

// ReplyRate returns replied/sent as a percentage
func (c Campaign) ReplyRate() float64 {
	return percent(c.Replied, c.Sent)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Search is a saved query against the lead-discovery service, scoped to a campaign
type Search struct {
	ID          string   `json:"id"`
	CampaignID  string   `json:"campaignId"`
	Name        string   `json:"name"`
	Keywords    string   `json:"keywords"`
	Location    string   `json:"location,omitempty"`
	Industry    []string `json:"industry,omitempty"`
	CompanySize []string `json:"companySize,omitempty"`
	Note        string   `json:"note,omitempty"`
}

package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Email statuses as stored by the backend
const (
	EmailStatusNew       = "NEW"
	EmailStatusSent      = "SENT"
	EmailStatusOpened    = "OPENED"
	EmailStatusReplied   = "REPLIED"
	EmailStatusUnreplied = "UNREPLIED"
	EmailStatusError     = "ERROR"
	EmailStatusInvalid   = "INVALID"
	EmailStatusFollowUp  = "FOLLOW_UP"
)

// EmailStatuses lists email statuses in display order
var EmailStatuses = []string{
	EmailStatusNew,
	EmailStatusSent,
	EmailStatusOpened,
	EmailStatusReplied,
	EmailStatusUnreplied,
	EmailStatusError,
	EmailStatusInvalid,
	EmailStatusFollowUp,
}

// Email represents an outreach email sent (or queued) to a lead
type Email struct {
	ID           int64      `json:"id"`
	Subject      string     `json:"subject"`
	ToEmail      string     `json:"toEmail"`
	FromEmail    string     `json:"fromEmail"`
	Body         string     `json:"body,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	OpenCount    int        `json:"openCount"`
	ClickCount   int        `json:"clickCount"`
	LeadID       int64      `json:"leadId"`
	LeadRef      string     `json:"-"`
	SalesTeamID  *int64     `json:"salesTeamId,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	OpenedAt     *time.Time `json:"openedAt,omitempty"`
	ClickedAt    *time.Time `json:"clickedAt,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON reads an email leniently, like Lead.UnmarshalJSON
func (e *Email) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*e = EmailFromRecord(r)
	return nil
}

// EmailFromRecord maps a raw backend record onto an Email. LeadRef keeps
// the lead id as sent, so non-numeric ids still group per lead.
func EmailFromRecord(r Record) Email {
	id, _ := r.Int64("id")
	leadID, _ := r.Int64("leadId", "lead_id")
	return Email{
		ID:           id,
		Subject:      r.String("subject"),
		ToEmail:      r.First("toEmail", "to_email"),
		FromEmail:    r.First("fromEmail", "from_email"),
		Body:         r.String("body"),
		Status:       r.String("status"),
		ErrorMessage: r.First("error_message", "errorMessage"),
		OpenCount:    r.Int("openCount", "open_count"),
		ClickCount:   r.Int("clickCount", "click_count"),
		LeadID:       leadID,
		LeadRef:      r.First("leadId", "lead_id"),
		SalesTeamID:  r.int64Ptr("salesTeamId", "sales_team_id"),
		SentAt:       r.Time("sentAt", "sent_at"),
		OpenedAt:     r.Time("openedAt", "opened_at"),
		ClickedAt:    r.Time("clickedAt", "clicked_at"),
		CreatedAt:    r.Time("createdAt", "created_at"),
		UpdatedAt:    r.Time("updatedAt", "updated_at"),
	}
}

// LeadKey identifies the email's lead for grouping
func (e Email) LeadKey() string {
	if e.LeadRef != "" {
		return e.LeadRef
	}
	return strconv.FormatInt(e.LeadID, 10)
}

// NormalizedStatus returns the upper-cased status
func (e Email) NormalizedStatus() string {
	return NormalizeStatus(e.Status)
}

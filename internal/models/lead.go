package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Lead statuses as stored by the backend
const (
	LeadStatusNew           = "NEW"
	LeadStatusContacted     = "CONTACTED"
	LeadStatusResponded     = "RESPONDED"
	LeadStatusInvalid       = "INVALID"
	LeadStatusNotInterested = "NOT_INTERESTED"
	LeadStatusError         = "ERROR"
)

// LeadStatuses lists lead statuses in display order
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusResponded,
	LeadStatusInvalid,
	LeadStatusNotInterested,
	LeadStatusError,
}

// Lead represents a prospective contact targeted for outreach
type Lead struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Status       string     `json:"status"`
	Company      string     `json:"company,omitempty"`
	Website      string     `json:"website,omitempty"`
	LinkedIn     string     `json:"linkedin,omitempty"`
	JobTitle     string     `json:"jobTitle,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Subscribed   *bool      `json:"subscribed,omitempty"`
	SalesTeamID  *int64     `json:"salesTeamId,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON reads a lead leniently: ids may be strings, the
// subscribed flag a number, timestamps SQL formatted. Unreadable optional
// fields are left empty instead of failing the whole list.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*l = LeadFromRecord(r)
	return nil
}

// LeadFromRecord maps a raw backend record onto a Lead
func LeadFromRecord(r Record) Lead {
	id, _ := r.Int64("id")
	return Lead{
		ID:           id,
		Name:         r.String("name"),
		Email:        r.String("email"),
		Phone:        r.String("phone"),
		Status:       r.String("status"),
		Company:      r.String("company"),
		Website:      r.String("website"),
		LinkedIn:     r.First("linkedin", "linkedIn"),
		JobTitle:     r.First("jobTitle", "job_title"),
		Notes:        r.String("notes"),
		ErrorMessage: r.First("error_message", "errorMessage"),
		Subscribed:   r.Bool("subscribed"),
		SalesTeamID:  r.int64Ptr("salesTeamId", "sales_team_id"),
		CreatedAt:    r.Time("createdAt", "created_at"),
		UpdatedAt:    r.Time("updatedAt", "updated_at"),
	}
}

// NormalizedStatus returns the upper-cased status
func (l Lead) NormalizedStatus() string {
	return NormalizeStatus(l.Status)
}

// IsUnsubscribed reports whether the lead explicitly opted out
func (l Lead) IsUnsubscribed() bool {
	return l.Subscribed != nil && !*l.Subscribed
}

// NormalizeStatus upper-cases a free-form status string for comparison
func NormalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

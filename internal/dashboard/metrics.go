// Package dashboard computes the outreach metrics shown on the home page.
package dashboard

import "github.com/foxzi/leadboard/internal/models"

// sentLike are the email statuses of a message that actually went out
var sentLike = map[string]bool{
	models.EmailStatusSent:      true,
	models.EmailStatusOpened:    true,
	models.EmailStatusReplied:   true,
	models.EmailStatusUnreplied: true,
	models.EmailStatusFollowUp:  true,
}

// Metrics are the dashboard counters
type Metrics struct {
	TotalLeads      int `json:"totalLeads"`
	ProcessedLeads  int `json:"processedLeads"`
	LeadsError      int `json:"leadsError"`
	Unsubscribed    int `json:"unsubscribed"`
	EmailsTotal     int `json:"emailsTotal"`
	EmailsSent      int `json:"emailsSent"`
	EmailsOpened    int `json:"emailsOpened"`
	EmailsReplied   int `json:"emailsReplied"`
	EmailsUnreplied int `json:"emailsUnreplied"`
	EmailOpens      int `json:"emailOpens"`
	EmailClicks     int `json:"emailClicks"`
	FollowUps       int `json:"followUps"`
}

// OpenRate is opened emails over total emails, in percent
func (m Metrics) OpenRate() float64 {
	return percent(m.EmailsOpened, m.EmailsTotal)
}

// ReplyRate is replied emails over total emails, in percent
func (m Metrics) ReplyRate() float64 {
	return percent(m.EmailsReplied, m.EmailsTotal)
}

// ProcessedRate is processed leads over total leads, in percent
func (m Metrics) ProcessedRate() float64 {
	return percent(m.ProcessedLeads, m.TotalLeads)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Compute reduces leads and emails to the dashboard metrics
func Compute(leads []models.Lead, emails []models.Email) Metrics {
	m := Metrics{
		TotalLeads:  len(leads),
		EmailsTotal: len(emails),
	}

	for _, l := range leads {
		switch l.NormalizedStatus() {
		case models.LeadStatusNew:
		case models.LeadStatusError, models.LeadStatusInvalid:
			m.ProcessedLeads++
			m.LeadsError++
		default:
			m.ProcessedLeads++
		}
		if l.IsUnsubscribed() {
			m.Unsubscribed++
		}
	}

	for _, e := range emails {
		switch e.NormalizedStatus() {
		case models.EmailStatusSent:
			m.EmailsSent++
		case models.EmailStatusOpened:
			m.EmailsOpened++
		case models.EmailStatusReplied:
			m.EmailsOpened++
			m.EmailsReplied++
		case models.EmailStatusUnreplied:
			m.EmailsUnreplied++
		}
		m.EmailOpens += e.OpenCount
		m.EmailClicks += e.ClickCount
	}

	m.FollowUps = FollowUps(emails)
	return m
}

// FollowUps counts emails sent to a lead after the first one:
// the sum over leads of max(sent-like emails - 1, 0).
func FollowUps(emails []models.Email) int {
	perLead := make(map[string]int)
	for _, e := range emails {
		if sentLike[e.NormalizedStatus()] {
			perLead[e.LeadKey()]++
		}
	}

	total := 0
	for _, n := range perLead {
		if n > 1 {
			total += n - 1
		}
	}
	return total
}

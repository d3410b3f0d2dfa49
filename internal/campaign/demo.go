package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/leadboard/internal/models"
)

// NewDemoStore creates a store seeded with sample campaigns and searches
func NewDemoStore() *Store {
	s := NewStore()
	created := time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC)

	q4 := &models.Campaign{
		ID:           uuid.New().String(),
		Name:         "Q4 Sales Push",
		Status:       models.CampaignStatusActive,
		Type:         "Email",
		Description:  "Campaign targeting enterprise clients for Q4 sales push",
		StartDate:    "2023-10-15",
		EndDate:      "2023-12-31",
		Sent:         1245,
		Opened:       856,
		Replied:      124,
		Bounced:      12,
		Unsubscribed: 8,
		CreatedAt:    created.Add(48 * time.Hour),
	}
	launch := &models.Campaign{
		ID:        uuid.New().String(),
		Name:      "New Product Launch",
		Status:    models.CampaignStatusDraft,
		Type:      "LinkedIn",
		StartDate: "2023-11-01",
		EndDate:   "2023-11-30",
		CreatedAt: created.Add(24 * time.Hour),
	}
	followUp := &models.Campaign{
		ID:        uuid.New().String(),
		Name:      "Follow-up Campaign",
		Status:    models.CampaignStatusCompleted,
		Type:      "Email",
		StartDate: "2023-10-01",
		EndDate:   "2023-10-14",
		Sent:      856,
		Opened:    623,
		Replied:   89,
		CreatedAt: created,
	}
	s.campaigns = []*models.Campaign{q4, launch, followUp}

	s.searches[q4.ID] = []models.Search{
		{
			ID:          uuid.New().String(),
			CampaignID:  q4.ID,
			Name:        "US SaaS Sales Managers",
			Keywords:    `sales AND manager AND (SaaS OR "software")`,
			Location:    "United States",
			Industry:    []string{"Technology", "Software"},
			CompanySize: []string{"51-200", "201-500"},
		},
		{
			ID:          uuid.New().String(),
			CampaignID:  q4.ID,
			Name:        "EU SDRs",
			Keywords:    "SDR OR BDR",
			Location:    "Europe",
			Industry:    []string{"IT Services"},
			CompanySize: []string{"11-50", "51-200"},
			Note:        "Focus on UK/DE",
		},
	}
	return s
}

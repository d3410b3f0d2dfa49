// Package campaign keeps campaigns and their saved searches in process memory.
package campaign

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/leadboard/internal/models"
)

var (
	ErrNotFound     = errors.New("campaign not found")
	ErrInvalidInput = errors.New("invalid campaign input")
	ErrInvalidState = errors.New("campaign status does not allow this action")
)

// Option lists of the campaign and search forms
var (
	Types        = []string{"Email", "LinkedIn", "Calls"}
	Industries   = []string{"Technology", "Software", "IT Services", "Finance"}
	CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1001-5000", "5000+"}
)

const dateLayout = "2006-01-02"

// CreateInput is the new-campaign form
type CreateInput struct {
	Name        string
	Type        string
	Description string
	StartDate   string
	EndDate     string
}

// SearchInput is the new-search form
type SearchInput struct {
	Name        string
	Keywords    string
	Location    string
	Industry    []string
	CompanySize []string
	Note        string
}

// Store holds campaigns, newest first. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	campaigns []*models.Campaign
	searches  map[string][]models.Search
	now       func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		searches: make(map[string][]models.Search),
		now:      time.Now,
	}
}

// List returns campaigns whose name, type or status contains query
func (s *Store) List(query string) []models.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if q != "" && !matches(c, q) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

func matches(c *models.Campaign, q string) bool {
	for _, f := range []string{c.Name, c.Type, c.Status, c.Description} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Get returns a campaign by id
func (s *Store) Get(id string) (models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.find(id)
	if c == nil {
		return models.Campaign{}, ErrNotFound
	}
	return *c, nil
}

// Create adds a draft campaign with zero counters
func (s *Store) Create(in CreateInput) (models.Campaign, error) {
	if err := validateCampaign(in); err != nil {
		return models.Campaign{}, err
	}

	c := &models.Campaign{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Status:      models.CampaignStatusDraft,
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns = append([]*models.Campaign{c}, s.campaigns...)
	return *c, nil
}

func validateCampaign(in CreateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: please enter a campaign name", ErrInvalidInput)
	}
	if !slices.Contains(Types, in.Type) {
		return fmt.Errorf("%w: please select a type", ErrInvalidInput)
	}

	var start, end time.Time
	var err error
	if in.StartDate != "" {
		if start, err = time.Parse(dateLayout, in.StartDate); err != nil {
			return fmt.Errorf("%w: invalid start date", ErrInvalidInput)
		}
	}
	if in.EndDate != "" {
		if end, err = time.Parse(dateLayout, in.EndDate); err != nil {
			return fmt.Errorf("%w: invalid end date", ErrInvalidInput)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	return nil
}

// Pause stops an active campaign
func (s *Store) Pause(id string) (models.Campaign, error) {
	return s.transition(id, models.CampaignStatusActive, models.CampaignStatusPaused)
}

// Resume restarts a paused campaign
func (s *Store) Resume(id string) (models.Campaign, error) {
	return s.transition(id, models.CampaignStatusPaused, models.CampaignStatusActive)
}

func (s *Store) transition(id, from, to string) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return models.Campaign{}, ErrNotFound
	}
	if c.Status != from {
		return models.Campaign{}, fmt.Errorf("%w: campaign is %s", ErrInvalidState, c.Status)
	}
	c.Status = to
	return *c, nil
}

// Delete removes a draft campaign and its searches
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.campaigns {
		if c.ID != id {
			continue
		}
		if c.Status != models.CampaignStatusDraft {
			return fmt.Errorf("%w: only drafts can be deleted", ErrInvalidState)
		}
		s.campaigns = slices.Delete(s.campaigns, i, i+1)
		delete(s.searches, id)
		return nil
	}
	return ErrNotFound
}

// AddSearch saves a search on a campaign
func (s *Store) AddSearch(campaignID string, in SearchInput) (models.Search, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Search{}, fmt.Errorf("%w: please enter a name", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Keywords) == "" {
		return models.Search{}, fmt.Errorf("%w: please enter keywords", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(campaignID) == nil {
		return models.Search{}, ErrNotFound
	}

	search := models.Search{
		ID:          uuid.New().String(),
		CampaignID:  campaignID,
		Name:        strings.TrimSpace(in.Name),
		Keywords:    strings.TrimSpace(in.Keywords),
		Location:    strings.TrimSpace(in.Location),
		Industry:    keep(in.Industry, Industries),
		CompanySize: keep(in.CompanySize, CompanySizes),
		Note:        strings.TrimSpace(in.Note),
	}
	s.searches[campaignID] = append(s.searches[campaignID], search)
	return search, nil
}

// Searches returns the saved searches of a campaign
func (s *Store) Searches(campaignID string) []models.Search {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.searches[campaignID])
}

func (s *Store) find(id string) *models.Campaign {
	for _, c := range s.campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// keep returns the values that appear in allowed, in input order
func keep(values, allowed []string) []string {
	var out []string
	for _, v := range values {
		if slices.Contains(allowed, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// StatusClass returns the tag color of a campaign status
func StatusClass(status string) string {
	switch status {
	case models.CampaignStatusActive:
		return "blue"
	case models.CampaignStatusDraft:
		return "orange"
	case models.CampaignStatusCompleted:
		return "green"
	case models.CampaignStatusPaused:
		return "red"
	default:
		return "default"
	}
}

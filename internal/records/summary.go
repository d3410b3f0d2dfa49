package records

import (
	"time"

	"github.com/foxzi/leadboard/internal/models"
)

// Summary is the overview line of a table on the databases page
type Summary struct {
	Resource  *Resource
	Count     int
	UpdatedAt time.Time
}

// Summarize counts recs and finds their most recent update, sent or
// creation time
func Summarize(res *Resource, recs []models.Record) Summary {
	s := Summary{Resource: res, Count: len(recs)}
	for _, rec := range recs {
		raw := rec.First("updatedAt", "sentAt", "createdAt")
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		if t.After(s.UpdatedAt) {
			s.UpdatedAt = t
		}
	}
	return s
}

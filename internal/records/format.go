package records

import (
	"strings"
	"time"

	"github.com/ttacon/libphonenumber"

	"github.com/foxzi/leadboard/internal/models"
)

// PasswordMask replaces stored passwords on every page
const PasswordMask = "••••••••"

// truncateAt is the length of error messages in list cells
const truncateAt = 30

// Formatter renders record values for display
type Formatter struct {
	// Location of displayed timestamps
	Location *time.Location
	// Region used to parse phone numbers written without a country code
	PhoneRegion string
	// TeamNames maps sales-team ids to member names
	TeamNames map[string]string
}

// NewFormatter creates a formatter for loc and the default phone region
func NewFormatter(loc *time.Location, phoneRegion string) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{Location: loc, PhoneRegion: phoneRegion}
}

// WithTeams returns a copy that resolves sales-team ids using members
func (f *Formatter) WithTeams(members []models.Record) *Formatter {
	cp := *f
	cp.TeamNames = make(map[string]string, len(members))
	for _, m := range members {
		if id := m.ID(); id != "" {
			cp.TeamNames[id] = m.First("name", "email")
		}
	}
	return &cp
}

// Value returns the raw string value of c in rec, honouring aliases
func Value(c Column, rec models.Record) string {
	return rec.First(append([]string{c.Key}, c.Aliases...)...)
}

// Cell renders one column of rec
func (f *Formatter) Cell(res *Resource, c Column, rec models.Record) Cell {
	raw := Value(c, rec)
	cell := Cell{Column: c, Text: raw, Title: raw}

	switch c.Kind {
	case ColStatus:
		cell.Text = models.NormalizeStatus(raw)
		cell.Class = StatusClass(res, cell.Text)
	case ColTime:
		cell.Text = f.Time(raw)
	case ColTruncate:
		cell.Text = Truncate(raw, truncateAt)
	case ColPhone:
		cell.Text = f.Phone(raw)
	case ColMasked:
		cell.Title = ""
		if raw != "" {
			cell.Text = PasswordMask
		}
	case ColSalesTeam:
		cell.Text = f.Team(raw)
	}
	if cell.Text == "" {
		cell.Text = "-"
	}
	return cell
}

// Time formats an RFC 3339 timestamp in the formatter's location.
// Unparseable values are returned unchanged.
func (f *Formatter) Time(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(f.Location).Format("Jan 2, 2006 15:04")
		}
	}
	return raw
}

// Phone formats a number in international notation, or returns it unchanged
func (f *Formatter) Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, f.PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
}

// Team returns the member name for a sales-team id, or the id itself
func (f *Formatter) Team(id string) string {
	if id == "" {
		return ""
	}
	if name, ok := f.TeamNames[id]; ok && name != "" {
		return name
	}
	return "#" + id
}

// Truncate shortens s to n runes followed by an ellipsis
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// StatusClass returns the badge colour of a status
func StatusClass(res *Resource, status string) string {
	switch status {
	case models.LeadStatusResponded, models.EmailStatusOpened:
		return "green"
	case models.LeadStatusContacted, models.EmailStatusSent:
		return "blue"
	case models.EmailStatusReplied:
		return "cyan"
	case models.LeadStatusInvalid:
		if res == Leads {
			return "orange"
		}
		return "red"
	case models.LeadStatusError:
		return "red"
	case models.LeadStatusNotInterested:
		return "red"
	default:
		return "default"
	}
}

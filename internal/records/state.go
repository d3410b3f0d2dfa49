package records

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Page size defaults mirrored in the URL
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 200
)

// PageSizes are the sizes offered by the page-size selector
var PageSizes = []int{10, 20, 50, 100}

// dateLayout is the value format of HTML date inputs
const dateLayout = "2006-01-02"

// ListState is the filter, paging and sort state of a list page. It lives
// entirely in the URL query so pages can be bookmarked and refreshed.
type ListState struct {
	Filters  map[string]string
	Page     int
	PageSize int
	Refresh  int
	Sort     string
	Desc     bool
}

// ParseListState reads the state of res from q. Unknown filters, invalid
// numbers and unsortable columns are ignored.
func ParseListState(res *Resource, q url.Values) ListState {
	st := ListState{
		Filters:  make(map[string]string),
		Page:     positiveInt(q.Get("page"), DefaultPage),
		PageSize: positiveInt(q.Get("pageSize"), DefaultPageSize),
		Refresh:  positiveInt(q.Get("refresh"), 0),
	}
	if st.PageSize > MaxPageSize {
		st.PageSize = MaxPageSize
	}

	for _, f := range res.Filters {
		v := strings.TrimSpace(q.Get(f.Name))
		if v == "" {
			continue
		}
		if f.Kind == FieldDate {
			if _, err := time.Parse(dateLayout, v); err != nil {
				continue
			}
		}
		st.Filters[f.Name] = v
	}

	if sort := q.Get("sort"); sort != "" {
		if c, ok := res.Column(sort); ok && c.Sortable {
			st.Sort = sort
			st.Desc = q.Get("order") == "desc"
		}
	}
	return st
}

// Values encodes the state back into URL query values
func (st ListState) Values() url.Values {
	q := url.Values{}
	for k, v := range st.Filters {
		q.Set(k, v)
	}
	q.Set("page", strconv.Itoa(st.Page))
	q.Set("pageSize", strconv.Itoa(st.PageSize))
	if st.Refresh > 0 {
		q.Set("refresh", strconv.Itoa(st.Refresh))
	}
	if st.Sort != "" {
		q.Set("sort", st.Sort)
		if st.Desc {
			q.Set("order", "desc")
		}
	}
	return q
}

// Encode returns the URL query string of the state
func (st ListState) Encode() string {
	return st.Values().Encode()
}

// WithPage returns a copy on page n
func (st ListState) WithPage(n int) ListState {
	cp := st.clone()
	cp.Page = n
	return cp
}

// WithPageSize returns a copy with a new page size, back on page 1
func (st ListState) WithPageSize(n int) ListState {
	cp := st.clone()
	cp.PageSize = n
	cp.Page = 1
	return cp
}

// WithSort returns a copy sorted by key; sorting by the current key flips the order
func (st ListState) WithSort(key string) ListState {
	cp := st.clone()
	if cp.Sort == key {
		cp.Desc = !cp.Desc
	} else {
		cp.Sort = key
		cp.Desc = false
	}
	return cp
}

// Refreshed returns a copy with the refresh counter bumped
func (st ListState) Refreshed() ListState {
	cp := st.clone()
	cp.Refresh++
	return cp
}

// HasFilters reports whether any filter is applied
func (st ListState) HasFilters() bool {
	return len(st.Filters) > 0
}

// Query returns the backend query parameters for the filters. Dates are
// sent as RFC 3339 timestamps: dateFrom at the start of its day and dateTo
// at the end of its day.
func (st ListState) Query(loc *time.Location) url.Values {
	if loc == nil {
		loc = time.UTC
	}
	q := url.Values{}
	for k, v := range st.Filters {
		switch k {
		case "dateFrom", "dateTo":
			t, err := time.ParseInLocation(dateLayout, v, loc)
			if err != nil {
				continue
			}
			if k == "dateFrom" {
				t = now.New(t).BeginningOfDay()
			} else {
				t = now.New(t).EndOfDay()
			}
			q.Set(k, t.UTC().Format(time.RFC3339))
		default:
			q.Set(k, v)
		}
	}
	return q
}

func (st ListState) clone() ListState {
	cp := st
	cp.Filters = make(map[string]string, len(st.Filters))
	for k, v := range st.Filters {
		cp.Filters[k] = v
	}
	return cp
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

package records

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxzi/leadboard/internal/models"
)

func TestTranslateOutboundRenamesJobTitle(t *testing.T) {
	vals := map[string]string{"name": "Ann", "email": "ann@example.com", "jobTitle": "CTO"}

	for _, mode := range []Mode{ModeCreate, ModeUpdate} {
		payload := TranslateOutbound(Leads, mode, vals)
		assert.Equal(t, "CTO", payload["job_title"])
		_, has := payload["jobTitle"]
		assert.False(t, has, "jobTitle must not be sent")
	}
}

func TestTranslateOutboundLeadStatus(t *testing.T) {
	vals := map[string]string{"name": "Ann", "status": "contacted"}

	assert.Equal(t, "CONTACTED", TranslateOutbound(Leads, ModeUpdate, vals)["status"])
	assert.Equal(t, "contacted", TranslateOutbound(Leads, ModeCreate, vals)["status"])
	assert.Equal(t, "contacted", TranslateOutbound(Emails, ModeUpdate, vals)["status"])
}

func TestTranslateOutboundEmptyValues(t *testing.T) {
	vals := map[string]string{"name": "Ann", "email": "ann@example.com", "notes": "", "jobTitle": ""}

	created := TranslateOutbound(Leads, ModeCreate, vals)
	assert.NotContains(t, created, "notes")
	assert.NotContains(t, created, "job_title")

	updated := TranslateOutbound(Leads, ModeUpdate, vals)
	assert.Equal(t, "", updated["notes"])
	assert.Equal(t, "", updated["job_title"])
}

func TestTranslateOutboundKeepsStoredPassword(t *testing.T) {
	vals := map[string]string{"name": "Rep", "email": "rep@example.com", "password": ""}
	assert.NotContains(t, TranslateOutbound(SalesTeam, ModeUpdate, vals), "password")

	vals["password"] = "new-secret"
	assert.Equal(t, "new-secret", TranslateOutbound(SalesTeam, ModeUpdate, vals)["password"])
}

func TestEditValues(t *testing.T) {
	rec := models.Record{"id": float64(3), "name": "Ann", "job_title": "CTO", "status": "new"}
	vals := EditValues(Leads, rec)
	assert.Equal(t, "CTO", vals["jobTitle"])
	assert.Equal(t, "NEW", vals["status"])

	team := EditValues(SalesTeam, models.Record{"name": "Rep", "password": "hunter2"})
	assert.Equal(t, "", team["password"])
}

func TestValidate(t *testing.T) {
	err := Validate(Leads, map[string]string{"name": "Ann"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Email"}, verr.Fields)

	assert.NoError(t, Validate(Leads, map[string]string{"name": "Ann", "email": "a@example.com"}))
}

func TestFormValues(t *testing.T) {
	form := url.Values{"name": {"  Ann "}, "unknown": {"x"}}
	vals := FormValues(Leads, form)
	assert.Equal(t, "Ann", vals["name"])
	assert.NotContains(t, vals, "unknown")
	assert.Contains(t, vals, "email")
}

func TestParseListStateDefaults(t *testing.T) {
	st := ParseListState(Leads, url.Values{})
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 10, st.PageSize)
	assert.Equal(t, 0, st.Refresh)
	assert.False(t, st.HasFilters())
}

func TestParseListState(t *testing.T) {
	q := url.Values{
		"page":     {"3"},
		"pageSize": {"20"},
		"refresh":  {"2"},
		"status":   {"NEW"},
		"name":     {""},
		"dateFrom": {"2024-02-01"},
		"dateTo":   {"not-a-date"},
		"toEmail":  {"ignored for leads"},
		"sort":     {"name"},
		"order":    {"desc"},
	}
	st := ParseListState(Leads, q)
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, 20, st.PageSize)
	assert.Equal(t, 2, st.Refresh)
	assert.Equal(t, map[string]string{"status": "NEW", "dateFrom": "2024-02-01"}, st.Filters)
	assert.Equal(t, "name", st.Sort)
	assert.True(t, st.Desc)

	// round trip through the URL
	again := ParseListState(Leads, st.Values())
	assert.Equal(t, st, again)
}

func TestParseListStateRejectsBadValues(t *testing.T) {
	st := ParseListState(Leads, url.Values{"page": {"-1"}, "pageSize": {"100000"}, "sort": {"notes"}})
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, MaxPageSize, st.PageSize)
	assert.Equal(t, "", st.Sort)
}

func TestListStateTransitions(t *testing.T) {
	st := ParseListState(Leads, url.Values{"page": {"4"}, "status": {"NEW"}})

	assert.Equal(t, 1, st.WithPageSize(50).Page)
	assert.Equal(t, 2, st.WithPage(2).Page)
	assert.Equal(t, 1, st.Refreshed().Refresh)
	assert.Equal(t, 0, st.Refresh, "original is unchanged")

	sorted := st.WithSort("name")
	assert.False(t, sorted.Desc)
	assert.True(t, sorted.WithSort("name").Desc)

	cp := st.WithPage(9)
	cp.Filters["status"] = "ERROR"
	assert.Equal(t, "NEW", st.Filters["status"])
}

func TestListStateQueryConvertsDates(t *testing.T) {
	st := ParseListState(Emails, url.Values{
		"dateFrom": {"2024-02-01"},
		"dateTo":   {"2024-02-29"},
		"status":   {"SENT"},
		"page":     {"2"},
	})
	q := st.Query(time.UTC)
	assert.Equal(t, "2024-02-01T00:00:00Z", q.Get("dateFrom"))
	assert.Equal(t, "2024-02-29T23:59:59Z", q.Get("dateTo"))
	assert.Equal(t, "SENT", q.Get("status"))
	assert.Empty(t, q.Get("page"), "paging is done locally")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	got, p := Paginate(items, 2, 5)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, got)
	assert.Equal(t, Page{Number: 2, Size: 5, Total: 12, Pages: 3, From: 6, To: 10}, p)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	got, p = Paginate(items, 3, 5)
	assert.Equal(t, []int{11, 12}, got)
	assert.False(t, p.HasNext())

	got, p = Paginate(items, 99, 5)
	assert.Equal(t, 3, p.Number)
	assert.Len(t, got, 2)

	got, p = Paginate([]int{}, 1, 10)
	assert.Empty(t, got)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, 0, p.From)
}

func TestMapRowsKeys(t *testing.T) {
	recs := []models.Record{
		{"id": float64(42), "name": "Ann", "status": "responded"},
		{"name": "No id"},
	}
	rows := MapRows(Leads, recs, NewFormatter(time.UTC, ""))
	require.Len(t, rows, 2)
	assert.Equal(t, "42", rows[0].Key)
	assert.Equal(t, "row-1", rows[1].Key)

	var status Cell
	for _, c := range rows[0].Cells {
		if c.Column.Key == "status" {
			status = c
		}
	}
	assert.Equal(t, "RESPONDED", status.Text)
	assert.Equal(t, "green", status.Class)
}

func TestSortRecords(t *testing.T) {
	recs := []models.Record{
		{"id": float64(10), "name": "bob"},
		{"id": float64(2), "name": "Ann"},
		{"id": float64(7)},
	}

	SortRecords(recs, "id", false)
	assert.Equal(t, []string{"2", "7", "10"}, ids(recs))

	SortRecords(recs, "name", false)
	assert.Equal(t, []string{"2", "10", "7"}, ids(recs))

	SortRecords(recs, "id", true)
	assert.Equal(t, []string{"10", "7", "2"}, ids(recs))
}

func ids(recs []models.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}

func TestFormatter(t *testing.T) {
	f := NewFormatter(time.UTC, "US")

	assert.Equal(t, "Mar 5, 2024 14:30", f.Time("2024-03-05T14:30:00Z"))
	assert.Equal(t, "yesterday", f.Time("yesterday"))

	assert.Equal(t, "+1 650-253-0000", f.Phone("(650) 253-0000"))
	assert.Equal(t, "+44 20 7031 3000", f.Phone("+442070313000"))
	assert.Equal(t, "12", f.Phone("12"))

	f = f.WithTeams([]models.Record{{"id": float64(5), "name": "Rep One"}})
	assert.Equal(t, "Rep One", f.Team("5"))
	assert.Equal(t, "#9", f.Team("9"))
}

func TestMaskedCell(t *testing.T) {
	f := NewFormatter(time.UTC, "")
	col, ok := SalesTeam.Column("password")
	require.True(t, ok)

	cell := f.Cell(SalesTeam, col, models.Record{"password": "hunter2"})
	assert.Equal(t, PasswordMask, cell.Text)
	assert.Empty(t, cell.Title)

	cell = f.Cell(SalesTeam, col, models.Record{})
	assert.Equal(t, "-", cell.Text)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 30))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestLookup(t *testing.T) {
	res, ok := Lookup("sales_team")
	require.True(t, ok)
	assert.False(t, res.Bulk)
	assert.Equal(t, "Import not available for Sales Team", res.ImportUnavailable())

	_, ok = Lookup("campaigns")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	recs := []models.Record{
		{"createdAt": "2024-01-01T00:00:00Z"},
		{"updatedAt": "2024-03-01T00:00:00Z", "createdAt": "2023-01-01T00:00:00Z"},
		{"sentAt": "2024-02-01T00:00:00Z"},
		{},
	}
	s := Summarize(Emails, recs)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), s.UpdatedAt.UTC())
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/campaign"
	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/models"
	"github.com/foxzi/leadboard/internal/records"
	"github.com/foxzi/leadboard/internal/web/middleware"
	"github.com/foxzi/leadboard/internal/web/notify"
	"github.com/foxzi/leadboard/internal/web/views"
)

// requestLog keeps the bodies the stub backend received
type requestLog struct {
	mu    sync.Mutex
	calls []string
	body  map[string]any
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r.Method+" "+r.URL.Path)
	if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		if json.NewDecoder(r.Body).Decode(&body) == nil {
			l.body = body
		}
	}
}

func (l *requestLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fixture struct {
	h       *Handlers
	router  http.Handler
	notes   *notify.Recorder
	audit   *audit.Store
	backend *requestLog
}

func newFixture(t *testing.T, mux *http.ServeMux) *fixture {
	t.Helper()
	if mux == nil {
		mux = http.NewServeMux()
	}
	log := &requestLog{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := views.New(time.UTC)
	require.NoError(t, err)
	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	notes := &notify.Recorder{}
	h := New(Deps{
		Logger:    logger,
		Views:     engine,
		API:       apiclient.New(backend.URL, ""),
		LeadSwift: leadswift.New("", ""),
		Campaigns: campaign.NewDemoStore(),
		Audit:     store,
		Notify:    notes.Factory(),
		Now:       func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) },
	})

	return &fixture{h: h, router: testRoutes(h), notes: notes, audit: store, backend: log}
}

func testRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.MethodOverride)
	for _, res := range records.All() {
		pages := h.Records(res)
		r.Route(res.Path, func(r chi.Router) {
			r.Get("/", pages.List)
			r.Post("/", pages.Create)
			r.Get("/export", pages.Export)
			r.Post("/import", pages.Import)
			r.Get("/{id}", pages.Detail)
			r.Put("/{id}", pages.Update)
			r.Delete("/{id}", pages.Delete)
			r.Get("/{id}/delete", pages.ConfirmDelete)
		})
	}
	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", h.CampaignsList)
		r.Post("/", h.CampaignsCreate)
		r.Get("/{id}", h.CampaignsView)
		r.Delete("/{id}", h.CampaignsDelete)
		r.Post("/{id}/pause", h.CampaignsPause)
		r.Post("/{id}/resume", h.CampaignsResume)
	})
	r.Get("/searches", h.Searches)
	r.Post("/search/{id}/sync", h.SearchSync)
	r.Get("/api/dashboard", h.DashboardAPI)
	r.Get("/databases", h.Databases)
	r.Get("/audit", h.AuditLog)
	return r
}

func (f *fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// upload posts a multipart form with a CSV under the "file" field
func (f *fixture) upload(t *testing.T, target, filename, content string, fields url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) lastNote(t *testing.T) (string, string) {
	t.Helper()
	msg, ok := f.notes.Last()
	require.True(t, ok, "no notification queued")
	return msg.Kind, msg.Message
}

func (f *fixture) auditEntries(t *testing.T) []audit.Entry {
	t.Helper()
	entries, _, err := f.audit.List(context.Background(), audit.Filter{Limit: 50})
	require.NoError(t, err)
	return entries
}

func writeJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestRecordsListRendersRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads", writeJSON(`{"data":{"leads":[
		{"id":1,"name":"Jane Doe","email":"jane@example.com","status":"NEW"},
		{"id":2,"name":"John Roe","email":"john@example.com","status":"PROCESSED"}
	]}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/leads?sort=name", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Jane Doe")
	assert.Contains(t, page, "John Roe")
	assert.Less(t, strings.Index(page, "Jane Doe"), strings.Index(page, "John Roe"))
	assert.Contains(t, page, "/leads/export")
}

func TestRecordsListBackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database unavailable"}`))
	})
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/leads", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)
	assert.Equal(t, "database unavailable", msg)
}

func TestRecordsCreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/leads", url.Values{"phone": {"+1 555 0100"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "required: Name, Email")
	assert.Empty(t, f.backend.Calls())
}

func TestRecordsCreate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads", writeJSON(`{"data":{"lead":{"id":7,"name":"Jane Doe"}}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodPost, "/leads", url.Values{
		"name":     {"Jane Doe"},
		"email":    {"jane@example.com"},
		"status":   {"NEW"},
		"jobTitle": {"CTO"},
		"return":   {"status=NEW&page=3"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/leads", loc.Path)
	assert.Equal(t, "NEW", loc.Query().Get("status"))

	assert.Equal(t, "CTO", f.backend.body["job_title"])
	assert.Equal(t, "NEW", f.backend.body["status"])

	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindSuccess, kind)
	assert.Equal(t, "Lead created successfully", msg)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, "leads", entries[0].EntityType)
	assert.Equal(t, "7", entries[0].EntityID)
}

func TestRecordsDetailNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Lead not found"}`))
	})
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/leads/99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestRecordsDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /emails/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f := newFixture(t, mux)

	rec := f.do(http.MethodDelete, "/emails/5", url.Values{"return": {"page=2"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, f.backend.Calls(), "DELETE /emails/5")
	_, msg := f.lastNote(t)
	assert.Equal(t, "Email deleted successfully", msg)
}

func TestExportUnavailableForSalesTeam(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/sales_team/export", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	kind, _ := f.lastNote(t)
	assert.Equal(t, notify.KindInfo, kind)
	assert.Empty(t, f.backend.Calls())
}

func TestExportLeads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NEW", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("id,name\n1,Jane\n"))
	})
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/leads/export?status=NEW", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="leads-export.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,name\n1,Jane\n", rec.Body.String())
}

func TestCampaignsCreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/campaigns", url.Values{"name": {""}, "type": {"Email"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "please enter a campaign name")
}

func TestCampaignsLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/campaigns", url.Values{
		"name":       {"Spring outreach"},
		"type":       {"Email"},
		"start_date": {"2024-03-01"},
		"end_date":   {"2024-04-01"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/campaigns/"))

	rec = f.do(http.MethodGet, location, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Spring outreach")

	// drafts cannot be paused
	rec = f.do(http.MethodPost, location+"/pause", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	kind, _ := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)

	rec = f.do(http.MethodDelete, location, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, msg := f.lastNote(t)
	assert.Equal(t, "Campaign deleted", msg)

	rec = f.do(http.MethodGet, location, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCampaignsPauseUnknown(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/campaigns/missing/pause", url.Values{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchesNotConfigured(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/searches?campaign=c1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leadswift is not configured")
}

func TestSearchSyncNotConfigured(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/search/s1/sync", url.Values{"campaign": {"c1"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/search/s1?campaign=c1", rec.Header().Get("Location"))
	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)
	assert.Contains(t, msg, "not configured")
}

func TestDashboardAPIInvalidRange(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/dashboard?range=custom&from=2024-05-10&to=2024-05-01", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end date is before start date")
}

func TestDashboardAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads", writeJSON(`{"data":{"leads":[{"id":1,"status":"NEW"},{"id":2,"status":"PROCESSED"}]}}`))
	mux.HandleFunc("GET /emails", writeJSON(`{"data":{"emails":[{"id":1,"status":"REPLIED"}]}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/api/dashboard?range=3months", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Preset   string `json:"preset"`
			DateFrom string `json:"dateFrom"`
			Metrics  struct {
				TotalLeads  int `json:"totalLeads"`
				EmailsTotal int `json:"emailsTotal"`
			} `json:"metrics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "3months", resp.Data.Preset)
	assert.NotEmpty(t, resp.Data.DateFrom)
	assert.Equal(t, 2, resp.Data.Metrics.TotalLeads)
	assert.Equal(t, 1, resp.Data.Metrics.EmailsTotal)
}

func TestRecordsUpdateThroughMethodOverride(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /leads/7", writeJSON(`{"data":{"lead":{"id":7}}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodPost, "/leads/7", url.Values{
		"_method":  {"PUT"},
		"name":     {"Jane Doe"},
		"email":    {"jane@example.com"},
		"status":   {"contacted"},
		"jobTitle": {"VP Sales"},
		"return":   {"page=2&refresh=4"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"PUT /leads/7"}, f.backend.Calls())
	assert.Equal(t, "VP Sales", f.backend.body["job_title"])
	assert.NotContains(t, f.backend.body, "jobTitle")
	assert.Equal(t, "CONTACTED", f.backend.body["status"])

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "2", loc.Query().Get("page"))
	assert.Equal(t, "5", loc.Query().Get("refresh"))

	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindSuccess, kind)
	assert.Equal(t, "Lead updated successfully", msg)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUpdate, entries[0].Action)
}

func TestRecordsUpdateKeepsStoredPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /sales_team/3", writeJSON(`{"data":{"team":{"id":3}}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodPost, "/sales_team/3", url.Values{
		"_method":  {"PUT"},
		"name":     {"Rep"},
		"email":    {"rep@example.com"},
		"server":   {"smtp.example.com"},
		"password": {""},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "smtp.example.com", f.backend.body["server"])
	assert.NotContains(t, f.backend.body, "password")
}

func TestRecordsUpdateFailureKeepsForm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /leads/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"email already used"}`))
	})
	f := newFixture(t, mux)

	rec := f.do(http.MethodPost, "/leads/7", url.Values{
		"_method": {"PUT"},
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)
	assert.Equal(t, "email already used", msg)
}

func TestRecordsImport(t *testing.T) {
	var received string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads/bulk_csv", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		received = header.Filename + ":" + string(data)
		writeJSON(`{"data":{"imported":2}}`)(w, r)
	})
	f := newFixture(t, mux)

	csv := "name,email\nAnn,ann@example.com\nBob,bob@example.com\n"
	rec := f.upload(t, "/leads/import", "leads.csv", csv, url.Values{"return": {"status=NEW&refresh=1"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "leads.csv:"+csv, received)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/leads", loc.Path)
	assert.Equal(t, "NEW", loc.Query().Get("status"))
	assert.Equal(t, "2", loc.Query().Get("refresh"))

	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindSuccess, kind)
	assert.Equal(t, "Imported 2 leads", msg)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionImport, entries[0].Action)
}

func TestRecordsImportFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emails/bulk/csv", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"row 3: invalid email"}`))
	})
	f := newFixture(t, mux)

	rec := f.upload(t, "/emails/import", "emails.csv", "subject\nHi\n", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)
	assert.Equal(t, "row 3: invalid email", msg)
	assert.Empty(t, f.auditEntries(t))
}

func TestRecordsImportWithoutFile(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.upload(t, "/leads/import", "", "", url.Values{"return": {"page=2"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	kind, msg := f.lastNote(t)
	assert.Equal(t, notify.KindError, kind)
	assert.Equal(t, "Please choose a CSV file to import", msg)
	assert.Empty(t, f.backend.Calls())
}

func TestDashboardAPIToleratesLooseRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads", writeJSON(`{"data":{"leads":[
		{"id":"a1","status":"new","subscribed":1,"createdAt":"2024-05-01 10:00:00"},
		{"id":"a2","status":"CONTACTED","subscribed":0}
	]}}`))
	mux.HandleFunc("GET /emails", writeJSON(`{"data":{"emails":[
		{"id":"m1","leadId":"a1","status":"SENT","openCount":"2","sentAt":"2024-05-01 10:00:00"},
		{"id":"m2","leadId":"a1","status":"REPLIED","sentAt":"not a date"}
	]}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/api/dashboard?range=all", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data struct {
			Metrics struct {
				TotalLeads   int `json:"totalLeads"`
				Unsubscribed int `json:"unsubscribed"`
				EmailsTotal  int `json:"emailsTotal"`
				EmailOpens   int `json:"emailOpens"`
				FollowUps    int `json:"followUps"`
			} `json:"metrics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	m := resp.Data.Metrics
	assert.Equal(t, 2, m.TotalLeads)
	assert.Equal(t, 1, m.Unsubscribed)
	assert.Equal(t, 2, m.EmailsTotal)
	assert.Equal(t, 2, m.EmailOpens)
	assert.Equal(t, 1, m.FollowUps)
}

func TestDatabasesKeepsPerTableErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leads", writeJSON(`{"data":{"leads":[{"id":1},{"id":2},{"id":3}]}}`))
	mux.HandleFunc("GET /emails", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"mail store offline"}`))
	})
	mux.HandleFunc("GET /sales_team", writeJSON(`{"data":{"teams":[]}}`))
	f := newFixture(t, mux)

	rec := f.do(http.MethodGet, "/databases", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mail store offline")
}

func TestAuditLogLists(t *testing.T) {
	f := newFixture(t, nil)
	f.audit.Record(context.Background(), &audit.Entry{
		UserEmail:  "ann@example.com",
		Action:     audit.ActionDelete,
		EntityType: "leads",
		EntityID:   "12",
	})

	rec := f.do(http.MethodGet, "/audit?action=delete", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ann@example.com")
}

func TestFilterLeads(t *testing.T) {
	leads := []leadswift.Lead{
		{Name: "Jane Doe", Email: "jane@acme.io", Company: "Acme", Status: "new"},
		{Name: "John Roe", Email: "john@globex.com", Company: "Globex", Status: "contacted"},
	}

	assert.Len(t, FilterLeads(leads, ""), 2)
	assert.Len(t, FilterLeads(leads, "  "), 2)

	got := FilterLeads(leads, "ACME")
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].Name)

	got = FilterLeads(leads, "contact")
	require.Len(t, got, 1)
	assert.Equal(t, "John Roe", got[0].Name)

	assert.Empty(t, FilterLeads(leads, "initech"))
}

func TestPageOf(t *testing.T) {
	p := pageOf(3, 50, 120)
	assert.Equal(t, records.Page{Number: 3, Size: 50, Total: 120, Pages: 3, From: 101, To: 120}, p)

	p = pageOf(9, 50, 0)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.From)
}

func TestUserFallsBackToNil(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var u *models.User = f.h.user(req)
	assert.Nil(t, u)
	assert.Same(t, f.h.api, f.h.client(req))
}

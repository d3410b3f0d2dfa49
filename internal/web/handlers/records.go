package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/models"
	"github.com/foxzi/leadboard/internal/records"
	"github.com/foxzi/leadboard/internal/web/views"
)

// maxImportSize bounds uploaded CSV files
const maxImportSize = 10 << 20

type recordService interface {
	List(ctx context.Context, params url.Values) ([]models.Record, error)
	Get(ctx context.Context, id string) (models.Record, error)
	Create(ctx context.Context, payload any) (models.Record, error)
	Update(ctx context.Context, id string, payload any) (models.Record, error)
	Delete(ctx context.Context, id string) error
}

type bulkService interface {
	recordService
	ImportCSV(ctx context.Context, filename string, r io.Reader) (models.Record, error)
	ExportCSV(ctx context.Context, params url.Values) (*apiclient.Blob, error)
}

// RecordPages serves the list, detail, form and CSV pages of one resource
type RecordPages struct {
	h   *Handlers
	res *records.Resource
}

// Records returns the pages of res
func (h *Handlers) Records(res *records.Resource) *RecordPages {
	return &RecordPages{h: h, res: res}
}

// Resource returns the resource served by p
func (p *RecordPages) Resource() *records.Resource {
	return p.res
}

func (p *RecordPages) service(r *http.Request) recordService {
	c := p.h.client(r)
	switch p.res {
	case records.Leads:
		return backend.Leads[models.Record](c)
	case records.Emails:
		return backend.Emails[models.Record](c)
	default:
		return backend.SalesTeam[models.Record](c)
	}
}

// List shows one page of the filtered, sorted records
func (p *RecordPages) List(w http.ResponseWriter, r *http.Request) {
	st := records.ParseListState(p.res, r.URL.Query())

	recs, err := p.service(r).List(r.Context(), st.Query(p.h.format.Location))
	if err != nil {
		p.h.logger.Error("failed to list records", "resource", p.res.Name, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Failed to load "+strings.ToLower(p.res.Title)))
	}
	if st.Sort != "" {
		records.SortRecords(recs, st.Sort, st.Desc)
	}

	items, pg := records.Paginate(recs, st.Page, st.PageSize)

	data := p.h.page(r, p.res.Title, p.res.Name)
	data["Resource"] = p.res
	data["State"] = st
	data["Rows"] = records.MapRows(p.res, items, p.h.format)
	data["PageSizes"] = records.PageSizes
	data["Pager"] = views.NewPager(p.res.Path, pg, func(n int) string {
		return st.WithPage(n).Encode()
	})
	p.h.render(w, r, "records_list", data)
}

// Detail shows every field of one record
func (p *RecordPages) Detail(w http.ResponseWriter, r *http.Request) {
	rec, ok := p.load(w, r)
	if !ok {
		return
	}
	p.renderDetail(w, r, rec, nil)
}

func (p *RecordPages) renderDetail(w http.ResponseWriter, r *http.Request, rec models.Record, extra map[string]any) {
	f := p.formatterFor(r, rec)
	cells := make([]records.Cell, 0, len(p.res.Detail))
	for _, c := range p.res.Detail {
		cells = append(cells, f.Cell(p.res, c, rec))
	}

	data := p.h.page(r, p.res.Singular+" "+p.label(rec), p.res.Name)
	data["Resource"] = p.res
	data["ID"] = chi.URLParam(r, "id")
	data["Cells"] = cells
	data["CanCheck"] = p.res == records.SalesTeam && p.h.mailbox != nil
	data["Check"] = nil
	data["DMARC"] = nil
	for k, v := range extra {
		data[k] = v
	}
	p.h.render(w, r, "records_detail", data)
}

// formatterFor resolves sales-team ids to names when rec references one.
// A failing team lookup falls back to showing the id.
func (p *RecordPages) formatterFor(r *http.Request, rec models.Record) *records.Formatter {
	if rec.String("salesTeamId") == "" {
		return p.h.format
	}
	teams, err := backend.SalesTeam[models.Record](p.h.client(r)).List(r.Context(), nil)
	if err != nil {
		p.h.logger.Warn("failed to load sales team names", "error", err)
		return p.h.format
	}
	return p.h.format.WithTeams(teams)
}

// New shows the create form
func (p *RecordPages) New(w http.ResponseWriter, r *http.Request) {
	p.renderForm(w, r, http.StatusOK, "", map[string]string{}, r.URL.Query().Get("return"), "")
}

// Create submits the create form
func (p *RecordPages) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.h.error(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	vals := records.FormValues(p.res, r.PostForm)
	ret := r.PostForm.Get("return")

	if err := records.Validate(p.res, vals); err != nil {
		p.renderForm(w, r, http.StatusUnprocessableEntity, "", vals, ret, err.Error())
		return
	}

	created, err := p.service(r).Create(r.Context(), records.TranslateOutbound(p.res, records.ModeCreate, vals))
	if err != nil {
		p.h.logger.Error("failed to create record", "resource", p.res.Name, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Failed to create "+strings.ToLower(p.res.Singular)))
		p.renderForm(w, r, http.StatusOK, "", vals, ret, "")
		return
	}

	p.h.record(r, audit.ActionCreate, p.res.Name, created.ID(), map[string]any{"name": p.label(created)})
	p.h.notifier(r).Success(p.res.Singular + " created successfully")
	http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
}

// Edit shows the edit form prefilled from the stored record
func (p *RecordPages) Edit(w http.ResponseWriter, r *http.Request) {
	rec, ok := p.load(w, r)
	if !ok {
		return
	}
	p.renderForm(w, r, http.StatusOK, chi.URLParam(r, "id"), records.EditValues(p.res, rec), r.URL.Query().Get("return"), "")
}

// Update submits the edit form
func (p *RecordPages) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		p.h.error(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	vals := records.FormValues(p.res, r.PostForm)
	ret := r.PostForm.Get("return")

	if err := records.Validate(p.res, vals); err != nil {
		p.renderForm(w, r, http.StatusUnprocessableEntity, id, vals, ret, err.Error())
		return
	}

	if _, err := p.service(r).Update(r.Context(), id, records.TranslateOutbound(p.res, records.ModeUpdate, vals)); err != nil {
		p.h.logger.Error("failed to update record", "resource", p.res.Name, "id", id, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Failed to update "+strings.ToLower(p.res.Singular)))
		p.renderForm(w, r, http.StatusOK, id, vals, ret, "")
		return
	}

	p.h.record(r, audit.ActionUpdate, p.res.Name, id, nil)
	p.h.notifier(r).Success(p.res.Singular + " updated successfully")
	http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
}

// ConfirmDelete asks before deleting
func (p *RecordPages) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	label := "#" + id
	if rec, err := p.service(r).Get(r.Context(), id); err == nil {
		label = p.label(rec)
	}

	data := p.h.page(r, "Delete "+p.res.Singular, p.res.Name)
	data["Resource"] = p.res
	data["ID"] = id
	data["Label"] = label
	data["Return"] = r.URL.RawQuery
	p.h.render(w, r, "records_confirm", data)
}

// Delete removes the record and returns to the list
func (p *RecordPages) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ret := r.FormValue("return")

	if err := p.service(r).Delete(r.Context(), id); err != nil {
		p.h.logger.Error("failed to delete record", "resource", p.res.Name, "id", id, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Failed to delete "+strings.ToLower(p.res.Singular)))
		http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
		return
	}

	p.h.record(r, audit.ActionDelete, p.res.Name, id, nil)
	p.h.notifier(r).Success(p.res.Singular + " deleted successfully")
	http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
}

// Export streams the backend's CSV of the filtered records
func (p *RecordPages) Export(w http.ResponseWriter, r *http.Request) {
	st := records.ParseListState(p.res, r.URL.Query())

	svc, ok := p.service(r).(bulkService)
	if !p.res.Bulk || !ok {
		p.h.notifier(r).Info("Export not available for " + p.res.Title)
		http.Redirect(w, r, p.listURL(st.Encode()), http.StatusSeeOther)
		return
	}

	blob, err := svc.ExportCSV(r.Context(), st.Query(p.h.format.Location))
	if err != nil {
		p.h.logger.Error("failed to export records", "resource", p.res.Name, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Export failed"))
		http.Redirect(w, r, p.listURL(st.Encode()), http.StatusSeeOther)
		return
	}

	p.h.record(r, audit.ActionExport, p.res.Name, "", map[string]any{"bytes": len(blob.Data)})

	contentType := blob.ContentType
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.res.ExportFile))
	w.Write(blob.Data)
}

// Import uploads a CSV file to the bulk endpoint
func (p *RecordPages) Import(w http.ResponseWriter, r *http.Request) {
	n := p.h.notifier(r)

	svc, ok := p.service(r).(bulkService)
	if !p.res.Bulk || !ok {
		n.Info(p.res.ImportUnavailable())
		http.Redirect(w, r, p.res.Path, http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		n.Error("Invalid upload: " + err.Error())
		http.Redirect(w, r, p.res.Path, http.StatusSeeOther)
		return
	}
	ret := r.FormValue("return")

	file, header, err := r.FormFile("file")
	if err != nil {
		n.Error("Please choose a CSV file to import")
		http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
		return
	}
	defer file.Close()

	result, err := svc.ImportCSV(r.Context(), header.Filename, file)
	if err != nil {
		p.h.logger.Error("failed to import records", "resource", p.res.Name, "file", header.Filename, "error", err)
		n.Error(apiclient.Message(err, "Import failed"))
		http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
		return
	}

	p.h.record(r, audit.ActionImport, p.res.Name, "", map[string]any{"file": header.Filename})
	if count := result.First("imported", "created", "count", "inserted"); count != "" {
		n.Success(fmt.Sprintf("Imported %s %s", count, strings.ToLower(p.res.Title)))
	} else {
		n.Success("Import completed")
	}
	http.Redirect(w, r, p.listURL(ret), http.StatusSeeOther)
}

// load fetches the record named by the URL. A missing record renders the
// not-found page; other failures go back to the list with a notification.
func (p *RecordPages) load(w http.ResponseWriter, r *http.Request) (models.Record, bool) {
	id := chi.URLParam(r, "id")
	rec, err := p.service(r).Get(r.Context(), id)
	switch {
	case apiclient.IsStatus(err, http.StatusNotFound):
		p.h.NotFound(w, r)
		return nil, false
	case err != nil:
		p.h.logger.Error("failed to load record", "resource", p.res.Name, "id", id, "error", err)
		p.h.notifier(r).Error(apiclient.Message(err, "Failed to load "+strings.ToLower(p.res.Singular)))
		http.Redirect(w, r, p.res.Path, http.StatusSeeOther)
		return nil, false
	case rec == nil:
		p.h.NotFound(w, r)
		return nil, false
	}
	return rec, true
}

func (p *RecordPages) renderForm(w http.ResponseWriter, r *http.Request, status int, id string, vals map[string]string, ret, errMsg string) {
	title := "New " + p.res.Singular
	action := p.res.Path
	if id != "" {
		title = "Edit " + p.res.Singular
		action = p.res.Path + "/" + url.PathEscape(id)
	}

	data := p.h.page(r, title, p.res.Name)
	data["Resource"] = p.res
	data["Values"] = vals
	data["Edit"] = id != ""
	data["Action"] = action
	data["Return"] = ret
	data["Error"] = errMsg
	p.h.renderStatus(w, r, status, "records_form", data)
}

// listURL returns to the list state encoded in ret with the refresh counter bumped
func (p *RecordPages) listURL(ret string) string {
	q, err := url.ParseQuery(ret)
	if err != nil {
		q = url.Values{}
	}
	st := records.ParseListState(p.res, q).Refreshed()
	return p.res.Path + "?" + st.Encode()
}

func (p *RecordPages) label(rec models.Record) string {
	if s := rec.First("name", "subject", "email", "toEmail"); s != "" {
		return s
	}
	if id := rec.ID(); id != "" {
		return "#" + id
	}
	return ""
}

package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/records"
)

// TableSummary is one line of the databases page
type TableSummary struct {
	records.Summary
	Error string
}

// Databases summarizes each backend table. Tables are counted concurrently
// and a failing table does not hide the others.
func (h *Handlers) Databases(w http.ResponseWriter, r *http.Request) {
	all := records.All()
	tables := make([]TableSummary, len(all))

	var g errgroup.Group
	for i, res := range all {
		svc := h.Records(res).service(r)
		g.Go(func() error {
			recs, err := svc.List(r.Context(), nil)
			if err != nil {
				h.logger.Error("failed to summarize table", "resource", res.Name, "error", err)
				tables[i] = TableSummary{Summary: records.Summary{Resource: res}, Error: apiclient.Message(err, "Failed to load")}
				return nil
			}
			tables[i] = TableSummary{Summary: records.Summarize(res, recs)}
			return nil
		})
	}
	g.Wait()

	data := h.page(r, "Databases", "databases")
	data["Tables"] = tables
	h.render(w, r, "databases", data)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/mailbox"
	"github.com/foxzi/leadboard/internal/records"
)

// CheckMailbox probes the SMTP server of a sales-team member with the
// stored credentials and looks up the DMARC policy of its domain
func (h *Handlers) CheckMailbox(w http.ResponseWriter, r *http.Request) {
	p := h.Records(records.SalesTeam)
	rec, ok := p.load(w, r)
	if !ok {
		return
	}
	if h.mailbox == nil {
		h.notifier(r).Warning("Mailbox checks are disabled")
		p.renderDetail(w, r, rec, nil)
		return
	}

	id := chi.URLParam(r, "id")
	email := rec.String("email")
	n := h.notifier(r)

	extra := map[string]any{}
	result, err := h.mailbox.Probe(r.Context(), rec.String("server"), email, rec.String("password"))
	if err != nil {
		n.Error("Mailbox check failed: " + err.Error())
	} else {
		extra["Check"] = result
		switch result.Status {
		case mailbox.StatusOK:
			n.Success("Mailbox check passed")
		case mailbox.StatusWarning:
			n.Warning(result.Message)
		default:
			n.Error(result.Message)
		}
	}
	dmarc := h.mailbox.DMARC(email)
	extra["DMARC"] = &dmarc

	details := map[string]any{"dmarc": dmarc.Status}
	if result != nil {
		details["status"] = result.Status
	}
	h.record(r, audit.ActionCheck, records.SalesTeam.Name, id, details)

	p.renderDetail(w, r, rec, extra)
}

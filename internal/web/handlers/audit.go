package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/web/views"
)

const auditPageSize = 50

var auditActions = []string{
	audit.ActionLogin,
	audit.ActionSignup,
	audit.ActionLogout,
	audit.ActionCreate,
	audit.ActionUpdate,
	audit.ActionDelete,
	audit.ActionImport,
	audit.ActionExport,
	audit.ActionSync,
	audit.ActionCheck,
	audit.ActionCampaign,
}

// AuditLog shows audit log entries
func (h *Handlers) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filter := audit.Filter{
		UserEmail:  strings.TrimSpace(q.Get("user")),
		Action:     q.Get("action"),
		EntityType: strings.TrimSpace(q.Get("entity")),
		Limit:      auditPageSize,
		Offset:     (page - 1) * auditPageSize,
	}

	var (
		entries []audit.Entry
		total   int
	)
	if h.audit != nil {
		var err error
		entries, total, err = h.audit.List(r.Context(), filter)
		if err != nil {
			h.logger.Error("failed to load audit log", "error", err)
			h.notifier(r).Error("Failed to load audit log")
		}
	}

	data := h.page(r, "Audit Log", "audit")
	data["Entries"] = entries
	data["Filter"] = filter
	data["Actions"] = auditActions
	data["Pager"] = views.NewPager("/audit", pageOf(page, auditPageSize, total), func(n int) string {
		v := url.Values{}
		if filter.UserEmail != "" {
			v.Set("user", filter.UserEmail)
		}
		if filter.Action != "" {
			v.Set("action", filter.Action)
		}
		if filter.EntityType != "" {
			v.Set("entity", filter.EntityType)
		}
		v.Set("page", strconv.Itoa(n))
		return v.Encode()
	})
	h.render(w, r, "audit", data)
}

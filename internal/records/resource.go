// Package records describes the three backend tables the panel browses
// and edits, and the list/detail logic shared by their pages.
package records

import "github.com/foxzi/leadboard/internal/models"

// FieldKind selects the form control of a field
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEmail
	FieldTextArea
	FieldSelect
	FieldDate
	FieldPassword
)

// Field is one input of a create/edit or filter form
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Options  []string
	Required bool
	// Aliases are alternative keys the backend may use when returning the value
	Aliases []string
}

// ColumnKind selects how a value is rendered
type ColumnKind int

const (
	ColText ColumnKind = iota
	ColStatus
	ColTime
	ColTruncate
	ColPhone
	ColMasked
	ColSalesTeam
)

// Column is one column of the list table or one line of the detail page
type Column struct {
	Key      string
	Label    string
	Kind     ColumnKind
	Sortable bool
	Aliases  []string
}

// Resource is a backend table exposed by the panel
type Resource struct {
	Name     string
	Title    string
	Singular string
	Path     string

	Columns []Column
	Detail  []Column
	Form    []Field
	Filters []Field

	Statuses []string

	// CSV import/export through the bulk endpoints
	Bulk       bool
	ExportFile string

	// Lead writes rename jobTitle to job_title and upper-case status on update
	RenameJobTitle     bool
	UpperStatusOnWrite bool
}

var jobTitleAliases = []string{"job_title"}

var (
	Leads = &Resource{
		Name:     "leads",
		Title:    "Leads",
		Singular: "Lead",
		Path:     "/leads",
		Columns: []Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "email", Label: "Email", Sortable: true},
			{Key: "phone", Label: "Phone", Kind: ColPhone},
			{Key: "status", Label: "Status", Kind: ColStatus, Sortable: true},
			{Key: "error_message", Label: "Error Message", Kind: ColTruncate},
			{Key: "company", Label: "Company", Sortable: true},
			{Key: "website", Label: "Website"},
			{Key: "jobTitle", Label: "Job Title", Aliases: jobTitleAliases},
			{Key: "createdAt", Label: "Created", Kind: ColTime, Sortable: true},
			{Key: "updatedAt", Label: "Updated", Kind: ColTime, Sortable: true},
		},
		Detail: []Column{
			{Key: "id", Label: "ID"},
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone", Kind: ColPhone},
			{Key: "status", Label: "Status", Kind: ColStatus},
			{Key: "company", Label: "Company"},
			{Key: "website", Label: "Website"},
			{Key: "linkedin", Label: "LinkedIn"},
			{Key: "jobTitle", Label: "Job Title", Aliases: jobTitleAliases},
			{Key: "notes", Label: "Notes"},
			{Key: "subscribed", Label: "Subscribed"},
			{Key: "salesTeamId", Label: "Sales Team", Kind: ColSalesTeam},
			{Key: "error_message", Label: "Error Message"},
			{Key: "createdAt", Label: "Created", Kind: ColTime},
			{Key: "updatedAt", Label: "Updated", Kind: ColTime},
		},
		Form: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Kind: FieldEmail, Required: true},
			{Name: "phone", Label: "Phone"},
			{Name: "status", Label: "Status", Kind: FieldSelect, Options: models.LeadStatuses},
			{Name: "company", Label: "Company"},
			{Name: "website", Label: "Website"},
			{Name: "linkedin", Label: "LinkedIn"},
			{Name: "jobTitle", Label: "Job Title", Aliases: jobTitleAliases},
			{Name: "notes", Label: "Notes", Kind: FieldTextArea},
			{Name: "error_message", Label: "Error Message"},
		},
		Filters: []Field{
			{Name: "name", Label: "Name"},
			{Name: "email", Label: "Email"},
			{Name: "status", Label: "Status", Kind: FieldSelect, Options: models.LeadStatuses},
			{Name: "dateFrom", Label: "Start Date", Kind: FieldDate},
			{Name: "dateTo", Label: "End Date", Kind: FieldDate},
		},
		Statuses:           models.LeadStatuses,
		Bulk:               true,
		ExportFile:         "leads-export.csv",
		RenameJobTitle:     true,
		UpperStatusOnWrite: true,
	}

	Emails = &Resource{
		Name:     "emails",
		Title:    "Emails",
		Singular: "Email",
		Path:     "/emails",
		Columns: []Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "subject", Label: "Subject", Sortable: true},
			{Key: "toEmail", Label: "To", Sortable: true},
			{Key: "fromEmail", Label: "From"},
			{Key: "status", Label: "Status", Kind: ColStatus, Sortable: true},
			{Key: "error_message", Label: "Error Message", Kind: ColTruncate},
			{Key: "openCount", Label: "Opens", Sortable: true},
			{Key: "clickCount", Label: "Clicks", Sortable: true},
			{Key: "leadId", Label: "Lead ID"},
			{Key: "sentAt", Label: "Sent At", Kind: ColTime, Sortable: true},
			{Key: "createdAt", Label: "Created", Kind: ColTime, Sortable: true},
		},
		Detail: []Column{
			{Key: "id", Label: "ID"},
			{Key: "subject", Label: "Subject"},
			{Key: "toEmail", Label: "To"},
			{Key: "fromEmail", Label: "From"},
			{Key: "status", Label: "Status", Kind: ColStatus},
			{Key: "body", Label: "Body"},
			{Key: "openCount", Label: "Open Count"},
			{Key: "clickCount", Label: "Click Count"},
			{Key: "leadId", Label: "Lead ID"},
			{Key: "salesTeamId", Label: "Sales Team", Kind: ColSalesTeam},
			{Key: "error_message", Label: "Error Message"},
			{Key: "sentAt", Label: "Sent At", Kind: ColTime},
			{Key: "openedAt", Label: "Opened At", Kind: ColTime},
			{Key: "clickedAt", Label: "Clicked At", Kind: ColTime},
			{Key: "createdAt", Label: "Created", Kind: ColTime},
			{Key: "updatedAt", Label: "Updated", Kind: ColTime},
		},
		Form: []Field{
			{Name: "subject", Label: "Subject", Required: true},
			{Name: "toEmail", Label: "To", Kind: FieldEmail, Required: true},
			{Name: "fromEmail", Label: "From", Kind: FieldEmail, Required: true},
			{Name: "body", Label: "Body", Kind: FieldTextArea},
			{Name: "status", Label: "Status", Kind: FieldSelect, Options: models.EmailStatuses},
			{Name: "error_message", Label: "Error Message"},
		},
		Filters: []Field{
			{Name: "toEmail", Label: "To"},
			{Name: "status", Label: "Status", Kind: FieldSelect, Options: models.EmailStatuses},
			{Name: "dateFrom", Label: "Start Date", Kind: FieldDate},
			{Name: "dateTo", Label: "End Date", Kind: FieldDate},
		},
		Statuses:   models.EmailStatuses,
		Bulk:       true,
		ExportFile: "emails-export.csv",
	}

	SalesTeam = &Resource{
		Name:     "sales_team",
		Title:    "Sales Team",
		Singular: "Sales Team Member",
		Path:     "/sales_team",
		Columns: []Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "email", Label: "Email", Sortable: true},
			{Key: "phone", Label: "Phone", Kind: ColPhone},
			{Key: "server", Label: "Server"},
			{Key: "password", Label: "Password", Kind: ColMasked},
			{Key: "createdAt", Label: "Created", Kind: ColTime, Sortable: true},
		},
		Detail: []Column{
			{Key: "id", Label: "ID"},
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone", Kind: ColPhone},
			{Key: "server", Label: "Server"},
			{Key: "password", Label: "Password", Kind: ColMasked},
			{Key: "createdAt", Label: "Created", Kind: ColTime},
			{Key: "updatedAt", Label: "Updated", Kind: ColTime},
		},
		Form: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Kind: FieldEmail, Required: true},
			{Name: "phone", Label: "Phone"},
			{Name: "server", Label: "Server"},
			{Name: "password", Label: "Password", Kind: FieldPassword},
		},
		Filters: []Field{
			{Name: "name", Label: "Name"},
			{Name: "email", Label: "Email"},
		},
	}
)

var all = []*Resource{Leads, Emails, SalesTeam}

// All returns every resource in menu order
func All() []*Resource {
	return all
}

// Lookup returns the resource with the given name
func Lookup(name string) (*Resource, bool) {
	for _, r := range all {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Column returns the list column with key
func (r *Resource) Column(key string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// ImportUnavailable is the notice shown for resources without bulk import
func (r *Resource) ImportUnavailable() string {
	return "Import not available for " + r.Title
}

package records

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/foxzi/leadboard/internal/models"
)

// Mode is the kind of write
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// ValidationError lists form fields that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required: %s", strings.Join(e.Fields, ", "))
}

// FormValues reads the resource's form fields from a submitted form
func FormValues(res *Resource, form url.Values) map[string]string {
	vals := make(map[string]string, len(res.Form))
	for _, f := range res.Form {
		vals[f.Name] = strings.TrimSpace(form.Get(f.Name))
	}
	return vals
}

// Validate checks required fields. Passwords are only required on create.
func Validate(res *Resource, vals map[string]string) error {
	var missing []string
	for _, f := range res.Form {
		if !f.Required || vals[f.Name] != "" {
			continue
		}
		missing = append(missing, f.Label)
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// TranslateOutbound builds the JSON payload sent to the backend.
//
// On create, empty fields are omitted. On update every field is sent so
// values can be cleared, except an empty password which keeps the stored
// one. Lead payloads carry job_title instead of jobTitle and an upper-cased
// status.
func TranslateOutbound(res *Resource, mode Mode, vals map[string]string) map[string]any {
	payload := make(map[string]any, len(vals))
	for _, f := range res.Form {
		v, ok := vals[f.Name]
		if !ok {
			continue
		}
		if v == "" && (mode == ModeCreate || f.Kind == FieldPassword) {
			continue
		}
		payload[f.Name] = v
	}

	if res.UpperStatusOnWrite && mode == ModeUpdate {
		if s, ok := payload["status"].(string); ok && s != "" {
			payload["status"] = models.NormalizeStatus(s)
		}
	}

	if res.RenameJobTitle {
		if v, ok := payload["jobTitle"]; ok {
			payload["job_title"] = v
			delete(payload, "jobTitle")
		}
	}
	return payload
}

// EditValues prefills the edit form from a stored record. Aliased keys are
// accepted on read, and passwords are never echoed back.
func EditValues(res *Resource, rec models.Record) map[string]string {
	vals := make(map[string]string, len(res.Form))
	for _, f := range res.Form {
		if f.Kind == FieldPassword {
			vals[f.Name] = ""
			continue
		}
		v := rec.First(append([]string{f.Name}, f.Aliases...)...)
		if f.Kind == FieldSelect {
			v = models.NormalizeStatus(v)
		}
		vals[f.Name] = v
	}
	return vals
}

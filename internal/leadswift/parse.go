package leadswift

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnrecognizedShape is returned for payloads that match none of the known response shapes
var ErrUnrecognizedShape = errors.New("unrecognized leadswift response shape")

// SearchSummary is a saved search as listed for a campaign
type SearchSummary struct {
	ID        string
	Name      string
	Location  string
	Status    string
	Count     *int
	CreatedAt string
	Raw       map[string]any
}

// Lead is a lead found by a search
type Lead struct {
	Key       string
	Name      string
	Email     string
	Status    string
	Website   string
	Company   string
	CreatedAt string
	Raw       map[string]any
}

var (
	searchIDKeys  = []string{"id", "searchId", "search_id", "_id", "uuid"}
	leadIDKeys    = []string{"id", "leadId", "_id", "uuid"}
	searchCount   = []string{"count", "total_results", "leadCount", "numLeads", "leadsCount"}
	syncCountKeys = []string{"inserted", "count", "synced"}
)

// ParseSearches decodes a searches response: a bare array or an object
// holding the array under searches, items or data.
func ParseSearches(data []byte) ([]SearchSummary, error) {
	items, err := unwrapList(data, "searches", "items", "data")
	if err != nil {
		return nil, err
	}
	out := make([]SearchSummary, 0, len(items))
	for i, item := range items {
		id := first(item, searchIDKeys...)
		if id == "" {
			return nil, fmt.Errorf("search %d has no id: %w", i, ErrUnrecognizedShape)
		}
		s := SearchSummary{
			ID:        id,
			Name:      first(item, "name", "title", "query"),
			Location:  first(item, "location", "city", "state", "country", "html_search"),
			Status:    first(item, "status"),
			CreatedAt: first(item, "createdAt", "created_at", "created"),
			Raw:       item,
		}
		if s.Status == "" {
			s.Status = "NEW"
		}
		if n, ok := firstInt(item, searchCount...); ok {
			s.Count = &n
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseLeads decodes a leads response: a bare array or an object holding
// the array under leads, items or data.
func ParseLeads(data []byte) ([]Lead, error) {
	items, err := unwrapList(data, "leads", "items", "data")
	if err != nil {
		return nil, err
	}
	out := make([]Lead, 0, len(items))
	for i, item := range items {
		l := Lead{
			Key:       first(item, leadIDKeys...),
			Name:      leadName(item),
			Email:     first(item, "email", "emailAddress"),
			Status:    strings.ToUpper(first(item, "status", "leadStatus")),
			Website:   first(item, "website", "websiteUrl"),
			Company:   first(item, "company", "companyName"),
			CreatedAt: first(item, "createdAt", "created_at"),
			Raw:       item,
		}
		if l.Key == "" {
			l.Key = l.Email
		}
		if l.Key == "" && l.Name == "" {
			return nil, fmt.Errorf("lead %d has no id, email or name: %w", i, ErrUnrecognizedShape)
		}
		if l.Key == "" {
			l.Key = fmt.Sprintf("row-%d", i)
		}
		if l.Status == "" {
			l.Status = "NEW"
		}
		out = append(out, l)
	}
	return out, nil
}

func leadName(item map[string]any) string {
	if name := first(item, "name"); name != "" {
		return name
	}
	var parts []string
	for _, k := range []string{"firstName", "lastName"} {
		if v := first(item, k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// unwrapList finds the item array in data
func unwrapList(data []byte, keys ...string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	switch t := v.(type) {
	case []any:
		return objects(t)
	case map[string]any:
		for _, k := range keys {
			if inner, ok := t[k]; ok {
				if arr, ok := inner.([]any); ok {
					return objects(arr)
				}
				// data may itself wrap the list one level down
				if obj, ok := inner.(map[string]any); ok {
					for _, k2 := range keys {
						if arr, ok := obj[k2].([]any); ok {
							return objects(arr)
						}
					}
				}
			}
		}
	}
	return nil, ErrUnrecognizedShape
}

func objects(arr []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(arr))
	for i, x := range arr {
		obj, ok := x.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is not an object: %w", i, ErrUnrecognizedShape)
		}
		out = append(out, obj)
	}
	return out, nil
}

func first(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalar(item[k]); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func firstInt(item map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch t := item[k].(type) {
		case float64:
			if t != 0 {
				return int(t), true
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n != 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func syncedCount(data []byte) (int, bool) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return 0, false
	}
	if n, ok := firstInt(obj, syncCountKeys...); ok {
		return n, true
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return firstInt(inner, syncCountKeys...)
	}
	return 0, false
}

// Package backend maps the outreach REST resources onto the API client.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/models"
)

// envelope is the {"data": {...}} wrapper of every backend response
type envelope struct {
	Data map[string]json.RawMessage `json:"data"`
}

func (e envelope) decode(key string, out any) error {
	raw, ok := e.Data[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Collection is one REST resource: GET/POST on path, GET/PUT/DELETE on path/{id}
type Collection[T any] struct {
	client  *apiclient.Client
	path    string
	listKey string
	itemKey string
}

// NewCollection creates a collection reading list responses from
// data[listKey] and single items from data[itemKey].
func NewCollection[T any](client *apiclient.Client, path, listKey, itemKey string) *Collection[T] {
	return &Collection[T]{client: client, path: path, listKey: listKey, itemKey: itemKey}
}

// Path returns the resource path
func (c *Collection[T]) Path() string {
	return c.path
}

// List returns every record matching params. Filtering and paging are the
// backend's business; params are passed through unchanged.
func (c *Collection[T]) List(ctx context.Context, params url.Values) ([]T, error) {
	var env envelope
	if err := c.client.Do(ctx, http.MethodGet, c.path, params, nil, &env); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.path, err)
	}
	var items []T
	if err := env.decode(c.listKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns a single record
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.item(ctx, http.MethodGet, c.itemPath(id), nil)
}

// Create posts payload and returns the created record
func (c *Collection[T]) Create(ctx context.Context, payload any) (T, error) {
	return c.item(ctx, http.MethodPost, c.path, payload)
}

// Update puts payload to the record and returns the updated record
func (c *Collection[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	return c.item(ctx, http.MethodPut, c.itemPath(id), payload)
}

// Delete removes the record
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.client.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s: %w", c.itemPath(id), err)
	}
	return nil
}

func (c *Collection[T]) item(ctx context.Context, method, path string, payload any) (T, error) {
	var zero T
	var env envelope
	if err := c.client.Do(ctx, method, path, nil, payload, &env); err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	var item T
	if err := env.decode(c.itemKey, &item); err != nil {
		return zero, err
	}
	return item, nil
}

func (c *Collection[T]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

// BulkCollection adds bulk import and CSV export to a collection
type BulkCollection[T any] struct {
	*Collection[T]
	bulkPath    string
	bulkCSVPath string
	exportPath  string
}

// ImportJSON posts items as a JSON array to the bulk endpoint
func (c *BulkCollection[T]) ImportJSON(ctx context.Context, items []T) (models.Record, error) {
	var env struct {
		Data models.Record `json:"data"`
	}
	if items == nil {
		items = []T{}
	}
	if err := c.client.Do(ctx, http.MethodPost, c.bulkPath, nil, items, &env); err != nil {
		return nil, fmt.Errorf("bulk import %s: %w", c.path, err)
	}
	return env.Data, nil
}

// ImportCSV uploads a CSV file to the bulk CSV endpoint
func (c *BulkCollection[T]) ImportCSV(ctx context.Context, filename string, r io.Reader) (models.Record, error) {
	var env struct {
		Data models.Record `json:"data"`
	}
	if err := c.client.Upload(ctx, c.bulkCSVPath, "file", filename, r, &env); err != nil {
		return nil, fmt.Errorf("csv import %s: %w", c.path, err)
	}
	return env.Data, nil
}

// ExportCSV downloads the server-generated CSV for the filtered set
func (c *BulkCollection[T]) ExportCSV(ctx context.Context, params url.Values) (*apiclient.Blob, error) {
	blob, err := c.client.Download(ctx, c.exportPath, params)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", c.path, err)
	}
	return blob, nil
}

// Leads returns the /leads collection
func Leads[T any](client *apiclient.Client) *BulkCollection[T] {
	return &BulkCollection[T]{
		Collection:  NewCollection[T](client, "/leads", "leads", "lead"),
		bulkPath:    "/leads/bulk",
		bulkCSVPath: "/leads/bulk_csv",
		exportPath:  "/leads/export",
	}
}

// Emails returns the /emails collection
func Emails[T any](client *apiclient.Client) *BulkCollection[T] {
	return &BulkCollection[T]{
		Collection:  NewCollection[T](client, "/emails", "emails", "email"),
		bulkPath:    "/emails/bulk",
		bulkCSVPath: "/emails/bulk/csv",
		exportPath:  "/emails/export",
	}
}

// SalesTeam returns the /sales_team collection
func SalesTeam[T any](client *apiclient.Client) *Collection[T] {
	return NewCollection[T](client, "/sales_team", "teams", "team")
}

package records

import (
	"sort"
	"strconv"
	"strings"

	"github.com/foxzi/leadboard/internal/models"
)

// Row is one record prepared for the list table
type Row struct {
	Key    string
	Record models.Record
	Cells  []Cell
}

// Cell is a rendered value
type Cell struct {
	Column Column
	Text   string
	Title  string
	Class  string
}

// MapRows turns raw records into table rows. A row's key is the record id,
// falling back to its position.
func MapRows(res *Resource, recs []models.Record, f *Formatter) []Row {
	rows := make([]Row, 0, len(recs))
	for i, rec := range recs {
		key := rec.ID()
		if key == "" {
			key = rec.String("key")
		}
		if key == "" {
			key = "row-" + strconv.Itoa(i)
		}
		row := Row{Key: key, Record: rec, Cells: make([]Cell, 0, len(res.Columns))}
		for _, c := range res.Columns {
			row.Cells = append(row.Cells, f.Cell(res, c, rec))
		}
		rows = append(rows, row)
	}
	return rows
}

// SortRecords sorts recs in place by key. Numbers compare numerically,
// everything else as case-insensitive text; missing values sort last.
func SortRecords(recs []models.Record, key string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, aok := recs[i][key]
		b, bok := recs[j][key]
		switch {
		case !aok || a == nil:
			return false
		case !bok || b == nil:
			return true
		}
		c := compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(
		strings.ToLower(models.Record{"v": a}.String("v")),
		strings.ToLower(models.Record{"v": b}.String("v")),
	)
}

// Page describes one slice of a list
type Page struct {
	Number   int
	Size     int
	Total    int
	Pages    int
	From, To int
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists
func (p Page) HasNext() bool { return p.Number < p.Pages }

// Paginate returns the requested page of items. The page number is clamped
// to the available range; an empty list has one empty page.
func Paginate[T any](items []T, page, size int) ([]T, Page) {
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	info := Page{Number: page, Size: size, Total: total, Pages: pages}
	if total > 0 {
		info.From = start + 1
		info.To = end
	}
	return items[start:end], info
}

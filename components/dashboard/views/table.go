package views

import (
	"strings"

	"github.com/goliatone/go-finboard/pkg/format"
	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// DefaultPageSize is the table page size.
const DefaultPageSize = 20

// TableOptions tunes table derivation.
type TableOptions struct {
	// Page is 1-based; values below 1 mean the first page.
	Page     int
	PageSize int
	// Search filters rows by case-insensitive substring match against
	// their JSON serialization.
	Search string
	// Fields, when set, restricts columns to the named raw keys.
	Fields []string
}

// Column is one table column: the raw lookup key and its display label.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Cell is one rendered table cell.
type Cell struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone,omitempty"`
}

// TableModel is the fully derived table for one page.
type TableModel struct {
	Columns    []Column                `json:"columns"`
	Rows       [][]Cell                `json:"rows"`
	Categories []jsonkit.CategoryCount `json:"categories,omitempty"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
	TotalRows  int                     `json:"total_rows"`
	Empty      bool                    `json:"empty"`
}

// BuildTable derives a table from a payload: categorize, filter, paginate,
// then flatten only the rows on the current page and compute the column
// union from them. Columns therefore reflect the current page, so they can
// shift between pages when row shapes differ.
func BuildTable(payload jsonkit.Value, opts TableOptions) TableModel {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Page < 1 {
		opts.Page = 1
	}

	set := jsonkit.Categorize(payload)
	rows := set.Rows
	if opts.Search != "" {
		rows = filterRows(rows, opts.Search)
	}

	total := len(rows)
	totalPages := (total + opts.PageSize - 1) / opts.PageSize
	if opts.Page > totalPages && totalPages > 0 {
		opts.Page = totalPages
	}
	start := (opts.Page - 1) * opts.PageSize
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}
	page := rows[start:end]

	flat := make([]jsonkit.Value, len(page))
	for i, row := range page {
		flat[i] = jsonkit.Flatten(row)
	}

	columns := pageColumns(flat, opts.Fields)
	model := TableModel{
		Columns:    columns,
		Categories: set.Categories,
		Page:       opts.Page,
		TotalPages: totalPages,
		TotalRows:  total,
	}
	if len(columns) == 0 {
		model.Empty = true
		return model
	}

	model.Rows = make([][]Cell, len(flat))
	for i, row := range flat {
		cells := make([]Cell, len(columns))
		for j, col := range columns {
			member, ok := row.Get(col.Key)
			if !ok {
				cells[j] = Cell{Text: "N/A"}
				continue
			}
			cells[j] = Cell{Text: FormatCell(member, col.Key), Tone: ValueTone(member, col.Key)}
		}
		model.Rows[i] = cells
	}
	return model
}

// pageColumns unions the keys of the page's rows in encounter order, with
// the category column forced first. A field selection replaces the union.
func pageColumns(rows []jsonkit.Value, selected []string) []Column {
	var keys []string
	if len(selected) > 0 {
		keys = selected
	} else {
		seen := map[string]bool{}
		hasCategory := false
		for _, row := range rows {
			for _, k := range row.Keys() {
				if k == jsonkit.CategoryKey {
					hasCategory = true
					continue
				}
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
		if hasCategory {
			keys = append([]string{jsonkit.CategoryKey}, keys...)
		}
	}
	columns := make([]Column, len(keys))
	for i, k := range keys {
		columns[i] = Column{Key: k, Label: format.Key(k)}
	}
	return columns
}

func filterRows(rows []jsonkit.Value, search string) []jsonkit.Value {
	needle := strings.ToLower(search)
	var out []jsonkit.Value
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.String()), needle) {
			out = append(out, row)
		}
	}
	return out
}

package jsonkit

import (
	"github.com/goliatone/go-finboard/pkg/format"
)

// CategoryKey tags rows that were produced from a category array. The
// leading underscore keeps it from colliding with upstream field names.
const CategoryKey = "_category"

// CategoryCount summarizes one detected category.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RowSet is the tabular interpretation of a payload.
type RowSet struct {
	Rows       []Value
	Categories []CategoryCount
	// Tagged reports whether rows carry the CategoryKey member.
	Tagged bool
}

// Categorize derives table rows from a payload. Top-level array input
// yields its elements verbatim. An object with one or more non-empty
// array-valued members is treated as categorized data: every array element
// becomes a row tagged with the humanized member name under CategoryKey.
// Anything else becomes a single row.
func Categorize(v Value) RowSet {
	switch v.Kind() {
	case Array:
		return RowSet{Rows: v.Items()}
	case Object:
		var categories []CategoryCount
		var rows []Value
		for _, key := range v.Keys() {
			member, _ := v.Get(key)
			if member.Kind() != Array || member.Len() == 0 {
				continue
			}
			categories = append(categories, CategoryCount{Name: key, Count: member.Len()})
			label := format.Key(key)
			for _, item := range member.Items() {
				row := NewObject()
				if item.Kind() == Object {
					for _, sub := range item.Keys() {
						nested, _ := item.Get(sub)
						row.Set(sub, nested)
					}
				}
				row.Set(CategoryKey, StringValue(label))
				rows = append(rows, row)
			}
		}
		if len(categories) == 0 {
			return RowSet{Rows: []Value{v}}
		}
		return RowSet{Rows: rows, Categories: categories, Tagged: true}
	default:
		return RowSet{Rows: []Value{v}}
	}
}

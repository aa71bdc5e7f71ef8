package jsonkit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-finboard/pkg/format"
)

// Caps keep chart payloads renderable regardless of upstream size.
const (
	MaxChartRecords = 50
	MaxChartFields  = 8
	MaxScalarPoints = 20
)

// Record is one chart row: a display name, the category it came from (when
// any), and its numeric fields.
type Record struct {
	Name     string
	Category string
	Values   map[string]float64

	fields []string
}

func (r *Record) set(field string, v float64) {
	if r.Values == nil {
		r.Values = map[string]float64{}
	}
	if _, ok := r.Values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.Values[field] = v
}

// FieldNames returns the record's numeric fields in encounter order.
func (r Record) FieldNames() []string { return r.fields }

// ChartTable is the chartable projection of a payload: records on the X
// axis and one series per field.
type ChartTable struct {
	Records []Record
	Fields  []string
}

// Empty reports whether nothing numeric could be extracted.
func (t ChartTable) Empty() bool { return len(t.Records) == 0 }

// ExtractChartTable projects a payload into chartable records. Three shapes
// are recognized, tried in order: an object with array-valued members
// (category arrays), a bare array of objects, and a bare object of scalars.
// Numeric strings count as numbers. Output is capped at MaxChartRecords
// records and MaxChartFields fields; the scalar-object case is capped at
// MaxScalarPoints points.
func ExtractChartTable(v Value) ChartTable {
	switch v.Kind() {
	case Object:
		if hasArrayMember(v) {
			return fromCategoryArrays(v)
		}
		return fromScalarObject(v)
	case Array:
		return fromArray(v.Items())
	default:
		return ChartTable{}
	}
}

func hasArrayMember(v Value) bool {
	for _, key := range v.Keys() {
		if member, _ := v.Get(key); member.Kind() == Array {
			return true
		}
	}
	return false
}

func fromCategoryArrays(v Value) ChartTable {
	var records []Record
	for _, key := range v.Keys() {
		member, _ := v.Get(key)
		if member.Kind() != Array {
			continue
		}
		label := format.Key(key)
		for i, item := range member.Items() {
			rec := Record{
				Name:     fmt.Sprintf("%s %d", label, i+1),
				Category: label,
			}
			collectNumeric(item, &rec)
			if len(rec.Values) == 0 {
				continue
			}
			records = append(records, rec)
		}
	}
	fields := fieldUnion(records)
	if len(records) > MaxChartRecords {
		records = records[:MaxChartRecords]
	}
	return ChartTable{Records: records, Fields: fields}
}

func fromArray(items []Value) ChartTable {
	if len(items) > MaxChartRecords {
		items = items[:MaxChartRecords]
	}
	records := make([]Record, 0, len(items))
	for i, item := range items {
		rec := Record{Name: fmt.Sprintf("Item %d", i+1)}
		collectNumeric(item, &rec)
		records = append(records, rec)
	}
	return ChartTable{Records: records, Fields: fieldUnion(records)}
}

// fromScalarObject walks numeric leaves up to two levels deep and charts
// them as a single "value" series labeled by their humanized key paths.
func fromScalarObject(v Value) ChartTable {
	points := NumericPoints(v)
	if len(points) == 0 {
		return ChartTable{}
	}
	if len(points) > MaxScalarPoints {
		points = points[:MaxScalarPoints]
	}
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{
			Name:   p.Label,
			Values: map[string]float64{"value": p.Value},
			fields: []string{"value"},
		}
	}
	return ChartTable{Records: records, Fields: []string{"value"}}
}

// Point is a single labeled numeric observation.
type Point struct {
	Key   string
	Label string
	Value float64
}

// NumericPoints collects numeric members of an object, descending one extra
// level into nested objects (never into arrays). Nested keys are labeled
// "Parent - Child". Strings are not coerced here.
func NumericPoints(v Value) []Point {
	if v.Kind() != Object {
		return nil
	}
	var out []Point
	for _, key := range v.Keys() {
		member, _ := v.Get(key)
		switch member.Kind() {
		case Number:
			out = append(out, Point{Key: key, Label: format.Key(key), Value: member.Float()})
		case Object:
			for _, sub := range member.Keys() {
				nested, _ := member.Get(sub)
				if nested.Kind() != Number {
					continue
				}
				out = append(out, Point{
					Key:   key + "." + sub,
					Label: format.Key(key) + " - " + format.Key(sub),
					Value: nested.Float(),
				})
			}
		}
	}
	return out
}

func collectNumeric(item Value, rec *Record) {
	if item.Kind() != Object {
		return
	}
	for _, key := range item.Keys() {
		member, _ := item.Get(key)
		switch member.Kind() {
		case Number:
			rec.set(key, member.Float())
		case String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(member.Str()), 64); err == nil {
				rec.set(key, f)
			}
		}
	}
}

func fieldUnion(records []Record) []string {
	var out []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, f := range rec.fields {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) > MaxChartFields {
		out = out[:MaxChartFields]
	}
	return out
}

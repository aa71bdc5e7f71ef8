package views

import (
	"fmt"

	"github.com/goliatone/go-finboard/pkg/format"
	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// CardField is one labeled value on a card. Href is set for URL values,
// which render as links instead of raw text.
type CardField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone,omitempty"`
	Href  string `json:"href,omitempty"`
}

// CardEntry is one item inside a category section: either a small field
// grid (object items) or a single text line (primitive items).
type CardEntry struct {
	Fields []CardField `json:"fields,omitempty"`
	Text   string      `json:"text,omitempty"`
}

// CardSection groups the entries of one category array.
type CardSection struct {
	Title string      `json:"title"`
	Count int         `json:"count"`
	Cards []CardEntry `json:"cards"`
}

// CardModel is the card rendering of a payload.
type CardModel struct {
	Sections []CardSection `json:"sections,omitempty"`
	// Fields holds the payload's scalar members, or the recursive
	// expansion of a plain object payload.
	Fields []CardField `json:"fields,omitempty"`
	// Text carries a primitive payload rendered as a single value.
	Text  string `json:"text,omitempty"`
	Empty bool   `json:"empty,omitempty"`
}

// BuildCard derives the card view. Objects with array members get one
// section per category plus a scalar field group; plain objects expand
// recursively with "Parent - Child" labels; arrays become a single
// section; primitives degrade to one formatted value.
func BuildCard(payload jsonkit.Value) CardModel {
	switch payload.Kind() {
	case jsonkit.Array:
		if payload.Len() == 0 {
			return CardModel{Empty: true}
		}
		return CardModel{Sections: []CardSection{arraySection("Items", payload.Items())}}
	case jsonkit.Object:
		if payload.Len() == 0 {
			return CardModel{Empty: true}
		}
		return objectCard(payload)
	default:
		return CardModel{Text: FormatCell(payload, "")}
	}
}

func objectCard(payload jsonkit.Value) CardModel {
	hasArrays := false
	for _, key := range payload.Keys() {
		if member, _ := payload.Get(key); member.Kind() == jsonkit.Array {
			hasArrays = true
			break
		}
	}

	var model CardModel
	if !hasArrays {
		model.Fields = objectFields(payload, "")
		return model
	}
	for _, key := range payload.Keys() {
		member, _ := payload.Get(key)
		switch member.Kind() {
		case jsonkit.Array:
			if member.Len() == 0 {
				continue
			}
			model.Sections = append(model.Sections, arraySection(format.Key(key), member.Items()))
		case jsonkit.Object:
			// nested objects are noise next to category sections
		default:
			model.Fields = append(model.Fields, cardField(format.Key(key), key, member))
		}
	}
	return model
}

// objectFields expands an object into labeled fields, descending into
// nested objects with a "Parent - Child" label prefix.
func objectFields(v jsonkit.Value, prefix string) []CardField {
	var out []CardField
	for _, key := range v.Keys() {
		member, _ := v.Get(key)
		label := format.Key(key)
		if prefix != "" {
			label = prefix + " - " + label
		}
		switch member.Kind() {
		case jsonkit.Object:
			out = append(out, objectFields(member, label)...)
		case jsonkit.Array:
			out = append(out, CardField{Label: label, Value: fmt.Sprintf("[%d items]", member.Len())})
		default:
			out = append(out, cardField(label, key, member))
		}
	}
	return out
}

func arraySection(title string, items []jsonkit.Value) CardSection {
	sec := CardSection{Title: title, Count: len(items)}
	for _, item := range items {
		if item.Kind() != jsonkit.Object {
			sec.Cards = append(sec.Cards, CardEntry{Text: FormatCell(item, "")})
			continue
		}
		var entry CardEntry
		for _, key := range item.Keys() {
			member, _ := item.Get(key)
			if member.Kind() == jsonkit.Object || member.Kind() == jsonkit.Array {
				continue
			}
			entry.Fields = append(entry.Fields, cardField(format.Key(key), key, member))
		}
		sec.Cards = append(sec.Cards, entry)
	}
	return sec
}

func cardField(label, key string, v jsonkit.Value) CardField {
	field := CardField{Label: label, Tone: ValueTone(v, key)}
	if v.Kind() == jsonkit.String && isURL(v.Str()) {
		field.Href = v.Str()
		field.Value = "View Link"
		return field
	}
	field.Value = FormatCell(v, key)
	return field
}

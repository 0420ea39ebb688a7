// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is a candidate result from a search collaborator, normalized at the
// pipeline boundary. Every field is optional: source backends return loosely
// typed documents, and a missing or malformed field is a finding, never a
// crash (prd003-verification R1.1).
//
// Field names keep the German keys used by the municipal source data.
type Record struct {
	// Year is the budget year (source key "jahr").
	Year *int `json:"jahr,omitempty" yaml:"jahr,omitempty"`

	// Amount is the signed amount in euro (source key "betrag").
	Amount *float64 `json:"betrag,omitempty" yaml:"betrag,omitempty"`

	// Category is the budget category (source key "kategorie").
	Category string `json:"kategorie,omitempty" yaml:"kategorie,omitempty"`

	// Description is the line-item or document description (source key
	// "beschreibung"). The only mandatory field.
	Description string `json:"beschreibung,omitempty" yaml:"beschreibung,omitempty"`

	// Date is the record date as the source provided it (source key "datum").
	Date string `json:"datum,omitempty" yaml:"datum,omitempty"`

	// Filename, FileSize, and DocType describe document records.
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	FileSize *int64 `json:"filesize,omitempty" yaml:"filesize,omitempty"`
	DocType  string `json:"typ,omitempty" yaml:"typ,omitempty"`

	// Extra holds source fields outside the schema, stringified. They take
	// part in pattern and relevance scanning but not in typed checks.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// RecordFromMap converts a raw collaborator document into a Record. This is
// the single coercion boundary (prd003-verification R1.2): a field that
// cannot be coerced is dropped and reported as an issue string, so the
// verifier can score it instead of failing.
func RecordFromMap(raw map[string]any) (Record, []string) {
	var rec Record
	var issues []string

	for key, val := range raw {
		if val == nil {
			continue
		}
		switch key {
		case "jahr":
			y, err := cast.ToIntE(val)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Feld 'jahr' (%v) ist kein gültiges Jahr", val))
				continue
			}
			rec.Year = &y
		case "betrag":
			b, err := cast.ToFloat64E(val)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Feld 'betrag' (%v) ist keine gültige Zahl", val))
				continue
			}
			rec.Amount = &b
		case "kategorie":
			rec.Category = cast.ToString(val)
		case "beschreibung":
			rec.Description = cast.ToString(val)
		case "datum":
			rec.Date = cast.ToString(val)
		case "filename":
			rec.Filename = cast.ToString(val)
		case "filesize":
			size, err := cast.ToInt64E(val)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Feld 'filesize' (%v) ist keine gültige Größe", val))
				continue
			}
			rec.FileSize = &size
		case "typ":
			rec.DocType = cast.ToString(val)
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[key] = cast.ToString(val)
		}
	}

	return rec, issues
}

// SearchText returns all field values joined for pattern scanning and
// relevance matching, with field names as prefixes so patterns can anchor on
// them ("betrag:..."). Keys appear in a stable order.
func (r Record) SearchText() string {
	pairs := make([]string, 0, 8+len(r.Extra))
	if r.Year != nil {
		pairs = append(pairs, fmt.Sprintf("jahr:%d", *r.Year))
	}
	if r.Amount != nil {
		// Plain decimal form so amount patterns can match digit runs.
		pairs = append(pairs, "betrag:"+strconv.FormatFloat(*r.Amount, 'f', -1, 64))
	}
	if r.Category != "" {
		pairs = append(pairs, "kategorie:"+r.Category)
	}
	if r.Description != "" {
		pairs = append(pairs, "beschreibung:"+r.Description)
	}
	if r.Date != "" {
		pairs = append(pairs, "datum:"+r.Date)
	}
	if r.Filename != "" {
		pairs = append(pairs, "filename:"+r.Filename)
	}
	if r.DocType != "" {
		pairs = append(pairs, "typ:"+r.DocType)
	}

	extraKeys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		pairs = append(pairs, k+":"+r.Extra[k])
	}

	return strings.ToLower(strings.Join(pairs, " "))
}

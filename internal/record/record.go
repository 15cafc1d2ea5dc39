package record

import (
	"fmt"
	"strconv"
)

// Domain selects which record shape the pipeline is working with.
type Domain string

const (
	DomainTask     Domain = "task"
	DomainSchedule Domain = "schedule"
	DomainSKU      Domain = "sku"
)

// ParseDomain validates a domain string from an API path or event payload.
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainTask, DomainSchedule, DomainSKU:
		return Domain(s), nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// Record is one candidate: field name → value. Values are strings except
// where the domain schema declares a numeric field (quantity).
type Record map[string]any

// String returns the string value of a field, or "" if absent or non-string.
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value of a field, or 0 if absent.
func (r Record) Int(field string) int {
	switch v := r[field].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Clone returns a shallow copy, used when staging hands records out for edit.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type field struct {
	name    string
	numeric bool
	def     any
}

var schemas = map[Domain][]field{
	DomainTask: {
		{name: "category", def: "task"},
		{name: "title", def: ""},
		{name: "type", def: "Other"},
		{name: "priority", def: "medium"},
		{name: "status", def: "todo"},
		{name: "deadline", def: ""},
		{name: "assignee", def: ""},
		{name: "notes", def: ""},
	},
	DomainSchedule: {
		{name: "orderNo", def: ""},
		{name: "product", def: ""},
		{name: "brand", def: ""},
		{name: "quantity", numeric: true, def: 0},
		{name: "channel", def: "Online"},
		{name: "shipDate", def: ""},
		{name: "eta", def: ""},
		{name: "warehouseDate", def: ""},
	},
	DomainSKU: {
		{name: "orderNo", def: ""},
		{name: "skuCode", def: ""},
		{name: "product", def: ""},
		{name: "brand", def: ""},
		{name: "color", def: ""},
		{name: "quantity", numeric: true, def: 1},
		{name: "channel", def: "Online"},
	},
}

var keyFields = map[Domain][]string{
	DomainTask:     {"title", "deadline", "assignee"},
	DomainSchedule: {"orderNo", "product"},
	DomainSKU:      {"orderNo", "skuCode"},
}

// Fields returns the ordered field names for a domain.
func Fields(d Domain) []string {
	fs := schemas[d]
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}
	return names
}

// KeyFields returns the natural-key field names for a domain.
func KeyFields(d Domain) []string {
	return keyFields[d]
}

// Key returns the natural-key values of a record, in KeyFields order.
func Key(d Domain, r Record) []string {
	fs := keyFields[d]
	vals := make([]string, len(fs))
	for i, f := range fs {
		vals[i] = r.String(f)
	}
	return vals
}

// Normalize maps a raw decoded JSON object onto the domain schema. Every
// schema field is present in the result: missing or mistyped values fall back
// to the field default, numbers arriving for string fields are formatted, and
// strings arriving for numeric fields are parsed. Fields outside the schema
// are dropped.
func Normalize(d Domain, raw map[string]any) Record {
	out := make(Record, len(schemas[d]))
	for _, f := range schemas[d] {
		v, ok := raw[f.name]
		if !ok || v == nil {
			out[f.name] = f.def
			continue
		}
		if f.numeric {
			out[f.name] = coerceInt(v, f.def.(int))
		} else {
			out[f.name] = coerceString(v, f.def.(string))
		}
	}
	return out
}

// Apply merges an edit patch onto a record in place. Only schema fields are
// applied; values are coerced the same way Normalize coerces them, and a
// field that cannot be coerced keeps its current value.
func Apply(d Domain, r Record, patch map[string]any) {
	for _, f := range schemas[d] {
		v, ok := patch[f.name]
		if !ok || v == nil {
			continue
		}
		if f.numeric {
			r[f.name] = coerceInt(v, r.Int(f.name))
		} else {
			r[f.name] = coerceString(v, r.String(f.name))
		}
	}
}

func coerceString(v any, def string) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return def
}

func coerceInt(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}

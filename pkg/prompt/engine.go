package prompt

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var (
	eachPattern   = regexp.MustCompile(`(?s)\{\{#each\s+([\w.-]+)\s*\}\}(.*?)\{\{/each\}\}`)
	ifPattern     = regexp.MustCompile(`(?s)\{\{#if\s+([\w.-]+)\s*\}\}(.*?)\{\{/if\}\}`)
	unlessPattern = regexp.MustCompile(`(?s)\{\{#unless\s+([\w.-]+)\s*\}\}(.*?)\{\{/unless\}\}`)
	thisPattern   = regexp.MustCompile(`\{\{\s*this\s*\}\}`)
	varPattern    = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)
)

// openMarker stands in for "{{" inside values expanded by each-blocks so the
// later passes never read them as template syntax.
const openMarker = "\uE000"

// Interpolate renders a template string against vars.
//
// Supported constructs, applied as whole-string passes in this order:
//
//	{{#each name}}...{{/each}}    repeat per element; {{this}} for scalars,
//	                              element fields for objects
//	{{#if name}}...{{/if}}        keep body when name is truthy
//	{{#unless name}}...{{/unless}} keep body when name is falsy
//	{{name}}                      stringified value, "" when missing
//
// Unknown names never fail; they render as empty. Names may contain letters,
// digits, "_", "-" and "."; dotted names walk nested maps and structs.
// Values are inserted verbatim: placeholder syntax inside a value is never
// expanded.
func Interpolate(template string, vars map[string]any) string {
	return strings.ReplaceAll(interpolate(template, vars), openMarker, "{{")
}

func interpolate(template string, vars map[string]any) string {
	out := eachPattern.ReplaceAllStringFunc(template, func(block string) string {
		m := eachPattern.FindStringSubmatch(block)
		return expandEach(m[2], lookup(vars, m[1]))
	})

	out = ifPattern.ReplaceAllStringFunc(out, func(block string) string {
		m := ifPattern.FindStringSubmatch(block)
		if Truthy(lookup(vars, m[1])) {
			return m[2]
		}
		return ""
	})

	out = unlessPattern.ReplaceAllStringFunc(out, func(block string) string {
		m := unlessPattern.FindStringSubmatch(block)
		if Truthy(lookup(vars, m[1])) {
			return ""
		}
		return m[2]
	})

	return varPattern.ReplaceAllStringFunc(out, func(ref string) string {
		m := varPattern.FindStringSubmatch(ref)
		return Stringify(lookup(vars, m[1]))
	})
}

func expandEach(body string, value any) string {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return ""
	}

	var sb strings.Builder
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if fields, ok := asObject(elem); ok {
			sb.WriteString(protect(interpolate(body, fields)))
			continue
		}
		item := protect(Stringify(elem))
		sb.WriteString(thisPattern.ReplaceAllLiteralString(body, item))
	}
	return sb.String()
}

func protect(s string) string {
	return strings.ReplaceAll(s, "{{", openMarker)
}

// asObject reports whether v is a map or struct and returns its fields keyed
// by name. Struct fields are keyed by their Go name; unexported fields are
// skipped.
func asObject(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Map:
		m, err := cast.ToStringMapE(rv.Interface())
		if err != nil {
			return nil, false
		}
		return m, true
	case reflect.Struct:
		rt := rv.Type()
		m := make(map[string]any, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			if f := rt.Field(i); f.IsExported() {
				m[f.Name] = rv.Field(i).Interface()
			}
		}
		return m, true
	}
	return nil, false
}

func lookup(vars map[string]any, name string) any {
	if vars == nil {
		return nil
	}
	if v, ok := vars[name]; ok {
		return v
	}
	if !strings.Contains(name, ".") {
		return nil
	}

	var cur any = vars
	for _, key := range strings.Split(name, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Truthy decides if/unless blocks. Falsy values are: missing or nil, false,
// the empty string, numeric zero, nil pointers, and empty slices, arrays and
// maps. Everything else is truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return Truthy(rv.Elem().Interface())
	}
	return true
}

// Stringify renders a variable for placeholder substitution.
// Lists are joined with ", "; nil renders as "".
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, Stringify(rv.Index(i).Interface()))
		}
		return strings.Join(items, ", ")
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	}

	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// BulletList renders one item per line, each preceded by prefix.
// An empty list renders as "".
func BulletList(items []string, prefix string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = prefix + item
	}
	return strings.Join(lines, "\n")
}

// Field is a labelled value for KeyValueLines
type Field struct {
	Key   string
	Value any
}

// KeyValueLines renders "key<sep>value" lines in the given order, skipping
// fields whose value is nil or the empty string.
func KeyValueLines(sep string, fields ...Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		value := Stringify(f.Value)
		if value == "" {
			continue
		}
		lines = append(lines, f.Key+sep+value)
	}
	return strings.Join(lines, "\n")
}

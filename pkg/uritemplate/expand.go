package uritemplate

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/yosida95/uritemplate/v3"
)

// KV is one member of an ordered associative value. Use []KV instead of a Go map
// when the expansion order of the pairs matters; map keys are expanded in sorted order.
type KV struct {
	Key   string
	Value string
}

// Expand substitutes params into the template. Missing and nil values are
// undefined; empty lists and maps are undefined as well.
func (t *Template) Expand(params map[string]any) (string, error) {
	values := make(uritemplate.Values, len(params))
	for _, name := range t.tmpl.Varnames() {
		if v, ok := toValue(params[name]); ok {
			values.Set(name, v)
		}
	}

	out, err := t.tmpl.Expand(values)
	if err != nil {
		return "", &ExpandError{Template: t.tmpl.Raw(), Err: err}
	}
	return out, nil
}

// toValue converts a Go value into a template value. It reports false for
// undefined values.
func toValue(v any) (uritemplate.Value, bool) {
	switch x := v.(type) {
	case nil:
		return uritemplate.Value{}, false
	case string:
		return uritemplate.String(x), true
	case []byte:
		return uritemplate.String(string(x)), true
	case []string:
		return list(x)
	case []KV:
		pairs := make([]string, 0, 2*len(x))
		for _, kv := range x {
			pairs = append(pairs, kv.Key, kv.Value)
		}
		return assoc(pairs)
	case map[string]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, 2*len(x))
		for _, k := range keys {
			pairs = append(pairs, k, x[k])
		}
		return assoc(pairs)
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return uritemplate.Value{}, false
		}
		return uritemplate.String(x.String()), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return uritemplate.Value{}, false
		}
		return toValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := scalarString(rv.Index(i).Interface()); ok {
				items = append(items, s)
			}
		}
		return list(items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return uritemplate.String(fmt.Sprint(v)), true
		}
		members := make(map[string]string, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if s, ok := scalarString(iter.Value().Interface()); ok {
				members[iter.Key().String()] = s
			}
		}
		return toValue(members)
	}

	s, _ := scalarString(v)
	return uritemplate.String(s), true
}

func list(items []string) (uritemplate.Value, bool) {
	if len(items) == 0 {
		return uritemplate.Value{}, false
	}
	return uritemplate.List(items...), true
}

func assoc(pairs []string) (uritemplate.Value, bool) {
	if len(pairs) == 0 {
		return uritemplate.Value{}, false
	}
	return uritemplate.KV(pairs...), true
}

// scalarString renders a member of a composite value. Undefined members are skipped.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
		return scalarString(rv.Elem().Interface())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.String:
		return rv.String(), true
	}
	return fmt.Sprint(v), true
}

package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

var (
	unmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	timeType        = reflect.TypeFor[time.Time]()
	durationType    = reflect.TypeFor[time.Duration]()
)

// jsonTag splits a field's json tag into its name and options.
func jsonTag(sf reflect.StructField) (string, []string) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

// fieldName returns the JSON name of a field, falling back to the Go name.
func fieldName(sf reflect.StructField) string {
	name, _ := jsonTag(sf)
	if name == "" {
		return sf.Name
	}
	return name
}

// isPromoted reports whether sf is an embedded struct whose fields are
// flattened into the parent JSON object.
func isPromoted(sf reflect.StructField) bool {
	if !sf.Anonymous {
		return false
	}
	if name, _ := jsonTag(sf); name != "" {
		return false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isOptional(sf reflect.StructField) bool {
	if sf.Type.Kind() == reflect.Pointer {
		return true
	}
	if _, ok := sf.Tag.Lookup("default"); ok {
		return true
	}
	_, opts := jsonTag(sf)
	return slices.Contains(opts, "omitempty")
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

// isOpaque reports whether t decodes itself, in which case its internals
// are not inspected for presence.
func isOpaque(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	return t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

type visitFunc func(v reflect.Value, path string) error

// visit walks v depth-first, calling fn on every reachable value.
func visit(v reflect.Value, path string, fn visitFunc) error {
	if err := fn(v, path); err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return visit(v.Elem(), path, fn)

	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if name, _ := jsonTag(sf); name == "-" {
				continue
			}
			p := path
			if !isPromoted(sf) {
				p = joinPath(path, fieldName(sf))
			}
			if err := visit(v.Field(i), p, fn); err != nil {
				return err
			}
		}

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := range v.Len() {
			if err := visit(v.Index(i), indexPath(path, i), fn); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.New(v.Type().Elem()).Elem()
			elem.Set(iter.Value())
			if err := visit(elem, joinPath(path, fmt.Sprint(iter.Key().Interface())), fn); err != nil {
				return err
			}
			v.SetMapIndex(iter.Key(), elem)
		}
	}

	return nil
}

func trimStrings(v reflect.Value, _ string) error {
	if v.Kind() == reflect.String && v.CanSet() {
		v.SetString(strings.TrimSpace(v.String()))
	}
	return nil
}

func runChecks(v reflect.Value, path string) error {
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		return nil
	}

	var c Checker
	switch {
	case v.CanAddr() && v.Addr().CanInterface():
		c, _ = v.Addr().Interface().(Checker)
	case v.CanInterface():
		c, _ = v.Interface().(Checker)
	}
	if c == nil {
		return nil
	}

	if err := c.Check(); err != nil {
		return newValidationError(path, err.Error(), err)
	}
	return nil
}

// findField locates a field of struct value v by JSON or Go name, looking
// through promoted embedded structs.
func findField(v reflect.Value, name string) (reflect.Value, reflect.StructField, bool) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if isPromoted(sf) {
			inner := v.Field(i)
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if fv, f, ok := findField(inner, name); ok {
				return fv, f, true
			}
			continue
		}
		if fieldName(sf) == name || sf.Name == name {
			return v.Field(i), sf, true
		}
	}
	return reflect.Value{}, reflect.StructField{}, false
}

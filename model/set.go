package model

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Set assigns value to the field at path (dot-separated JSON or Go names)
// of the entity target points to, applying the same rules as a decode:
// type conformance, whitespace trimming, constraint tags and Checker
// invariants. When any rule fails the entity is left unchanged.
func Set(target any, path string, value any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newValidationError(path, fmt.Sprintf("target must be a non-nil pointer, got %T", target), nil)
	}

	field, sf, err := resolve(rv.Elem(), path)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return newValidationError(path, "field cannot be assigned", nil)
	}

	candidate := reflect.New(field.Type()).Elem()
	if err := assign(candidate, sf, value); err != nil {
		return newValidationError(path, err.Error(), err)
	}
	// value may share storage with the caller
	candidate.Set(deepCopy(candidate))
	if err := visit(candidate, path, trimStrings); err != nil {
		return err
	}
	if err := validateVar(path, candidate, sf.Tag.Get("validate")); err != nil {
		return err
	}
	if err := validateValue(candidate, path); err != nil {
		return err
	}

	previous := reflect.New(field.Type()).Elem()
	previous.Set(field)
	field.Set(candidate)

	if err := visit(rv.Elem(), "", runChecks); err != nil {
		field.Set(previous)
		return err
	}
	return nil
}

func resolve(root reflect.Value, path string) (reflect.Value, reflect.StructField, error) {
	current := root
	var sf reflect.StructField

	segments := strings.Split(path, ".")
	for i, seg := range segments {
		for current.Kind() == reflect.Pointer {
			if current.IsNil() {
				return reflect.Value{}, sf, newValidationError(strings.Join(segments[:i], "."), "cannot traverse nil value", nil)
			}
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.Value{}, sf, newValidationError(strings.Join(segments[:i], "."), "not an entity", nil)
		}

		fv, f, ok := findField(current, seg)
		if !ok {
			return reflect.Value{}, sf, newValidationError(strings.Join(segments[:i+1], "."), "unknown field", nil)
		}
		current, sf = fv, f
	}
	return current, sf, nil
}

// deepCopy copies v so that no slice, map or pointer is shared with it.
// Unexported struct fields are copied shallowly.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type().Elem())
		c.Elem().Set(deepCopy(v.Elem()))
		return c
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			c.Index(i).Set(deepCopy(v.Index(i)))
		}
		return c
	case reflect.Array:
		c := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			c.Index(i).Set(deepCopy(v.Index(i)))
		}
		return c
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return c
	case reflect.Struct:
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		if isOpaque(v.Type()) {
			return c
		}
		for i := range v.NumField() {
			if f := c.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i)))
			}
		}
		return c
	}
	return v
}

func assign(dst reflect.Value, sf reflect.StructField, value any) error {
	if value == nil {
		if isNilable(dst.Type()) && isOptional(sf) {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return fmt.Errorf("value may not be null")
	}

	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	target := dst
	if dst.Kind() == reflect.Pointer {
		target = reflect.New(dst.Type().Elem()).Elem()
	}

	switch {
	case src.Type().AssignableTo(target.Type()):
		target.Set(src)
	case isNumber(src.Kind()) && isNumber(target.Kind()):
		if err := convertNumber(src, target); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected %s, got %s", dst.Type(), src.Type())
	}

	if dst.Kind() == reflect.Pointer {
		dst.Set(target.Addr())
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertNumber converts between numeric kinds, refusing conversions that
// would lose information.
func convertNumber(src, dst reflect.Value) error {
	var f float64
	switch {
	case src.CanInt():
		f = float64(src.Int())
	case src.CanUint():
		f = float64(src.Uint())
	default:
		f = src.Float()
	}

	switch {
	case dst.CanInt():
		if f != math.Trunc(f) || dst.OverflowInt(int64(f)) {
			return fmt.Errorf("value %v does not fit %s", src.Interface(), dst.Type())
		}
		dst.SetInt(int64(f))
	case dst.CanUint():
		if f < 0 || f != math.Trunc(f) || dst.OverflowUint(uint64(f)) {
			return fmt.Errorf("value %v does not fit %s", src.Interface(), dst.Type())
		}
		dst.SetUint(uint64(f))
	default:
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %v does not fit %s", src.Interface(), dst.Type())
		}
		dst.SetFloat(f)
	}
	return nil
}

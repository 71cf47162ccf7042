package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Decode decodes data into a new T under the validation contract. On
// failure the zero T is returned with a *ValidationError.
func Decode[T any](data []byte) (T, error) {
	var out T
	if err := DecodeInto(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// DecodeInto decodes data into target, which must be a non-nil pointer to a
// zero value. target may be partially populated when an error is returned.
func DecodeInto(data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newValidationError("", fmt.Sprintf("decode target must be a non-nil pointer, got %T", target), nil)
	}

	raw := json.RawMessage(bytes.TrimSpace(data))
	if isNull(raw) && !isNilable(rv.Elem().Type()) {
		return newValidationError("", "value may not be null", nil)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fromJSONError(err)
	}

	if err := checkPresence(raw, rv.Elem(), ""); err != nil {
		return err
	}

	return finish(rv)
}

// Validate re-applies whitespace trimming, constraint tags and Checker
// invariants to an entity built or modified in code. Presence of required
// fields cannot be observed outside a decode and is not checked.
func Validate(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newValidationError("", fmt.Sprintf("validate target must be a non-nil pointer, got %T", target), nil)
	}
	return finish(rv)
}

func finish(rv reflect.Value) error {
	if err := visit(rv.Elem(), "", trimStrings); err != nil {
		return err
	}
	if err := validateStruct(rv); err != nil {
		return err
	}
	return visit(rv.Elem(), "", runChecks)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func fromJSONError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return newValidationError(typeErr.Field,
			fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value), err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return newValidationError("", fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), err)
	}

	return newValidationError("", err.Error(), err)
}

// checkPresence walks raw alongside v, enforcing required keys and filling
// defaults for missing optional keys.
func checkPresence(raw json.RawMessage, v reflect.Value, path string) error {
	if isNull(raw) {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return checkPresence(raw, v.Elem(), path)

	case reflect.Struct:
		if isOpaque(v.Type()) {
			return nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		return checkStruct(obj, v, path)

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		for i := 0; i < v.Len() && i < len(items); i++ {
			if isNull(items[i]) && !isNilable(v.Type().Elem()) {
				return newValidationError(indexPath(path, i), "value may not be null", nil)
			}
			if err := checkPresence(items[i], v.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			elem := reflect.New(v.Type().Elem()).Elem()
			elem.Set(iter.Value())
			if err := checkPresence(obj[key], elem, joinPath(path, key)); err != nil {
				return err
			}
			v.SetMapIndex(iter.Key(), elem)
		}
	}

	return nil
}

func checkStruct(obj map[string]json.RawMessage, v reflect.Value, path string) error {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _ := jsonTag(sf)
		if name == "-" {
			continue
		}

		fv := v.Field(i)
		if isPromoted(sf) {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv.Set(reflect.New(sf.Type.Elem()))
				}
				fv = fv.Elem()
			}
			if err := checkStruct(obj, fv, path); err != nil {
				return err
			}
			continue
		}

		name = fieldName(sf)
		fieldPath := joinPath(path, name)
		raw, present := lookupKey(obj, name)

		switch {
		case !present:
			if def, ok := sf.Tag.Lookup("default"); ok {
				if err := setDefault(fv, def); err != nil {
					return newValidationError(fieldPath, fmt.Sprintf("invalid default %q: %v", def, err), err)
				}
				continue
			}
			if !isOptional(sf) {
				return newValidationError(fieldPath, "field required", nil)
			}
		case isNull(raw):
			if !isOptional(sf) || !isNilable(sf.Type) {
				return newValidationError(fieldPath, "value may not be null", nil)
			}
		default:
			if err := checkPresence(raw, fv, fieldPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// lookupKey mirrors encoding/json key matching: exact first, then
// case-insensitive.
func lookupKey(obj map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := obj[name]; ok {
		return raw, true
	}
	for k, raw := range obj {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

func setDefault(v reflect.Value, def string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(def)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(def)
	case reflect.Bool:
		b, err := strconv.ParseBool(def)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(def, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(def, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(def, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := setDefault(elem.Elem(), def); err != nil {
			return err
		}
		v.Set(elem)
	default:
		return fmt.Errorf("unsupported default for kind %s", v.Kind())
	}
	return nil
}

package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// constraints returns the shared validator, configured to report JSON field
// names.
func constraints() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _ := jsonTag(sf)
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

func validateStruct(rv reflect.Value) error {
	return validateValue(rv.Elem(), "")
}

// validateValue runs the constraint tags of every struct reachable from v
// without passing through another struct. Slice, array and map roots are
// validated element by element.
func validateValue(v reflect.Value, path string) error {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if isOpaque(v.Type()) {
			return nil
		}
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		if err := constraints().Struct(ptr.Interface()); err != nil {
			return fromValidatorError(path, v.Type(), err)
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := validateValue(v.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			if err := validateValue(v.MapIndex(k), joinPath(path, fmt.Sprint(k.Interface()))); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateVar checks a single value against a validate tag.
func validateVar(path string, value reflect.Value, tag string) error {
	if tag == "" || tag == "-" {
		return nil
	}
	if err := constraints().Var(value.Interface(), tag); err != nil {
		return fromValidatorError(path, nil, err)
	}
	return nil
}

// fromValidatorError converts the first validator failure. root is the type
// that was validated, or nil for a single value.
func fromValidatorError(path string, root reflect.Type, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		p := path
		if ns := namespacePath(root, fe.StructNamespace()); ns != "" {
			p = joinPath(path, ns)
		}
		return newValidationError(p, describe(fe), err)
	}
	return newValidationError(path, err.Error(), err)
}

// namespacePath rewrites a validator struct namespace such as
// "Page.Paging.Items[2].Title" into JSON names relative to root, dropping
// the root type and promoted structs: "items[2].title".
func namespacePath(root reflect.Type, ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found || root == nil {
		return ""
	}

	t := root
	var out []string
	for seg := range strings.SplitSeq(rest, ".") {
		name, index, _ := strings.Cut(seg, "[")
		if index != "" {
			index = "[" + index
		}

		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			out = append(out, seg)
			continue
		}
		sf, ok := t.FieldByName(name)
		if !ok {
			out = append(out, seg)
			continue
		}

		t = sf.Type
		for range strings.Count(index, "[") {
			for t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
				t = t.Elem()
			}
		}
		if isPromoted(sf) && index == "" {
			continue
		}
		out = append(out, fieldName(sf)+index)
	}
	return strings.Join(out, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on the '%s' constraint", fe.Tag())
	}
}

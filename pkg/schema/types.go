package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type is the contract for validating one field of a payload.
type Type interface {
	// Name returns the type's declaration form (e.g. "string", "[float]").
	Name() string
	// Validate reports whether a decoded JSON value conforms.
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// JSON numbers decode as float64; whole values pass.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// rangeType validates a number within [min, max] inclusive. It is how the
// ranking payload pins scores to the 1.0-5.0 scale.
type rangeType struct {
	min, max float64
}

func (t rangeType) Name() string {
	return fmt.Sprintf("float[%g,%g]", t.min, t.max)
}

func (t rangeType) Validate(value any) error {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
	if v < t.min || v > t.max {
		return fmt.Errorf("%g outside [%g, %g]", v, t.min, t.max)
	}
	return nil
}

// enumType validates a string against a closed value set, case-insensitive.
type enumType struct {
	values []string
}

func (t enumType) Name() string {
	return "enum(" + strings.Join(t.values, "|") + ")"
}

func (t enumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, v := range t.values {
		if strings.EqualFold(s, v) {
			return nil
		}
	}
	return fmt.Errorf("%q not in %s", s, t.Name())
}

// optionalType wraps another type: a missing or null field passes, any
// other value must conform. Optional is recognized by the presence check
// in Validate.
type optionalType struct {
	inner Type
}

func (t optionalType) Name() string { return t.inner.Name() + "?" }

func (t optionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error { return t.validate(value) }

// String validates string fields.
func String() Type { return stringType{} }

// Int validates whole-number fields.
func Int() Type { return intType{} }

// Float validates numeric fields.
func Float() Type { return floatType{} }

// Bool validates boolean fields.
func Bool() Type { return boolType{} }

// Slice validates homogeneous arrays.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Range validates a number within [min, max] inclusive.
func Range(min, max float64) Type { return rangeType{min: min, max: max} }

// Enum validates a string against a closed set, case-insensitive.
func Enum(values ...string) Type { return enumType{values: values} }

// Optional marks a field as allowed to be absent.
func Optional(inner Type) Type { return optionalType{inner: inner} }

// Custom wraps a user-defined validation function.
func Custom(name string, validate func(any) error) Type {
	return customType{name: name, validate: validate}
}

// ParseType converts a declaration string into a Type. Supported forms:
// "string", "int", "float", "bool", "[elem]" for slices,
// "float[min,max]" for bounded numbers, "enum(a|b|c)" for closed string
// sets, and a trailing "?" for optional fields.
func ParseType(decl string) (Type, error) {
	if strings.HasSuffix(decl, "?") {
		inner, err := ParseType(strings.TrimSuffix(decl, "?"))
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}
	if len(decl) > 2 && decl[0] == '[' && decl[len(decl)-1] == ']' {
		elem, err := ParseType(decl[1 : len(decl)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	if body, ok := cutAffix(decl, "float[", "]"); ok {
		low, high, found := strings.Cut(body, ",")
		if !found {
			return nil, fmt.Errorf("malformed range %q: want float[min,max]", decl)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(low), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range %q: %w", decl, err)
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(high), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range %q: %w", decl, err)
		}
		if min > max {
			return nil, fmt.Errorf("malformed range %q: min above max", decl)
		}
		return Range(min, max), nil
	}
	if body, ok := cutAffix(decl, "enum(", ")"); ok {
		values := strings.Split(body, "|")
		for i, v := range values {
			values[i] = strings.TrimSpace(v)
			if values[i] == "" {
				return nil, fmt.Errorf("malformed enum %q: empty value", decl)
			}
		}
		return Enum(values...), nil
	}
	switch decl {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", decl)
	}
}

func cutAffix(s, prefix, suffix string) (string, bool) {
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) && len(s) > len(prefix)+len(suffix) {
		return s[len(prefix) : len(s)-len(suffix)], true
	}
	return "", false
}

// ParseTypeMap converts a declaration map, as found in a prompt document's
// front matter, into a Schema.
func ParseTypeMap(decls map[string]string) (Schema, error) {
	out := make(Schema, len(decls))
	for field, decl := range decls {
		t, err := ParseType(decl)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		out[field] = t
	}
	return out, nil
}

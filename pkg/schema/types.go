package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation of decoded JSON values.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "[object]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// optional marks fields that may be absent.
type optional interface {
	optional() bool
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// FloatType validates numbers. JSON numbers always decode as float64.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

// IntType validates whole numbers.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// AnyType accepts every value, including null.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(any) error { return nil }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected array, got %T", value)
	}
	var errs []error
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			errs = append(errs, nest(fmt.Sprintf("[%d]", i), err)...)
		}
	}
	return aggregate(errs)
}

// MapType validates JSON objects whose values all share one type.
type MapType struct {
	valueType Type
}

func (t *MapType) Name() string {
	return fmt.Sprintf("{%s}", t.valueType.Name())
}

func (t *MapType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	var errs []error
	for _, k := range sortedKeys(m) {
		if err := t.valueType.Validate(m[k]); err != nil {
			errs = append(errs, nest(k, err)...)
		}
	}
	return aggregate(errs)
}

// ObjectType validates a JSON object against a nested Schema.
type ObjectType struct {
	schema Schema
}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return Validate(t.schema, m)
}

// OptionalType allows the field to be missing or null.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

func (t *OptionalType) optional() bool { return true }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Float creates a number type validator.
func Float() Type { return &FloatType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Any accepts anything.
func Any() Type { return &AnyType{} }

// Slice creates an array validator for elements of the given type.
func Slice(elemType Type) Type { return &SliceType{elemType: elemType} }

// Map creates an object validator whose values share valueType.
func Map(valueType Type) Type { return &MapType{valueType: valueType} }

// Object creates a validator for a nested object.
func Object(s Schema) Type { return &ObjectType{schema: s} }

// Optional wraps t so that a missing or null field is accepted.
func Optional(t Type) Type { return &OptionalType{inner: t} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// OneOf accepts strings from a closed set.
func OneOf(values ...string) Type {
	return Custom(fmt.Sprintf("oneof%v", values), func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		for _, allowed := range values {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v, got %q", values, s)
	})
}

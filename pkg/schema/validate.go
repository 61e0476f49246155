package schema

import (
	"errors"
	"sort"
	"strings"
)

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Returns an AggregateError with all validation failures, ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, key := range sortedKeys(schema) {
		fieldType := schema[key]
		value, exists := data[key]
		if !exists {
			if _, ok := fieldType.(optional); ok {
				continue
			}
			errs = append(errs, fieldErr(key, "required", nil))
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, nest(key, err)...)
		}
	}
	return aggregate(errs)
}

// nest prefixes the field path of every failure in err with key.
func nest(key string, err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		out := make([]error, 0, len(aggr.Errors))
		for _, e := range aggr.Errors {
			out = append(out, nest(key, e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []error{&ValidationError{Key: joinPath(key, ve.Key), Reason: ve.Reason, Value: ve.Value}}
	}
	return []error{fieldErr(key, err.Error(), nil)}
}

func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "[") {
		return parent + child
	}
	return parent + "." + child
}

func aggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

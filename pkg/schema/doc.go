// Package schema validates and builds the persisted representation of a flow.
//
// Raw payloads are checked in three passes, and every failure is collected
// into an AggregateError:
//
//  1. shape: a small field type system (String, Float, Slice, Object, ...)
//     checks the decoded JSON before it is bound to Go types;
//  2. structure: struct tags on the domain types are enforced with
//     go-playground/validator;
//  3. references: edges must point at existing nodes and block lists must
//     belong to existing nodes.
//
// Basic usage:
//
//	file, err := schema.ParseFlow(data)
//	if err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
//
// ExportFlow is the inverse: it stamps the `_meta` block (document size,
// counts, format version) onto a document ready to be written.
package schema

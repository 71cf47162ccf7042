// Package model decodes JSON response bodies into typed entities under a
// single validation contract.
//
// # Contract
//
// Every decode performed through this package applies the same rules:
//
//   - Unknown JSON keys are ignored.
//   - Every string reachable from the entity (fields, slice elements, map
//     values, nested entities) has leading and trailing whitespace removed.
//   - A field is required unless it is a pointer, carries a `default:"..."`
//     tag, or its json tag includes omitempty. A missing required key, or a
//     null for a field that cannot hold one, fails the decode.
//   - Missing fields with a default tag receive the parsed default.
//   - Constraint tags understood by go-playground/validator (`validate:"gte=0"`,
//     `validate:"email"`, ...) are checked after decoding.
//   - Entities implementing Checker run their own cross-field checks.
//
// Any failure is reported as a single *ValidationError whose Path names the
// offending field using JSON names, e.g. "users[2].address.coordinates.lat".
//
// # Usage
//
//	type Product struct {
//		ID    int      `json:"id"`
//		Title string   `json:"title"`
//		Brand *string  `json:"brand"`
//		Stock int      `json:"stock" default:"0" validate:"gte=0"`
//	}
//
//	p, err := model.Decode[Product](body)
//	if err != nil {
//		var verr *model.ValidationError
//		if errors.As(err, &verr) {
//			log.Printf("bad field %s: %s", verr.Path, verr.Reason)
//		}
//	}
//
// Fields changed after decoding can go through Set, which re-applies the
// same rules and leaves the entity untouched when the new value is rejected:
//
//	err := model.Set(&p, "title", "  Widget ")  // p.Title == "Widget"
package model

// Package filter evaluates expr-lang expressions against decoded entities.
//
// An entity is exposed to the expression through its JSON field names, so
// the same filter works for any type:
//
//	f, err := filter.Compile(`price < 20 and hasTag("beauty") and rating >= 4.5`)
//	if err != nil {
//		return err
//	}
//	cheap, err := filter.Apply(f, page.Products)
//
// Nested objects use member access (`address.city == "Phoenix"`).
//
// # Helpers
//
//   - contains, startsWith, endsWith: case-insensitive string tests
//   - lower, upper
//   - hasTag(tag): case-insensitive membership in the entity's "tags" field
//   - parseDate(v), daysSince(v), daysAgo(n), now()
package filter

package filter

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the number of compiled expressions kept by Compile
const DefaultCacheSize = 100

// Filter is a compiled boolean expression over an entity's JSON fields.
// It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables caching of compiled filters with the given size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*Filter](size)
		}
	}
}

// WithCustomFunctions adds helper functions available to every expression
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler turns expressions into filters
type Compiler struct {
	helpers map[string]any
	cache   *lruCache[*Filter]
}

// NewCompiler creates a compiler with the built-in helpers
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{helpers: helperFunctions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler(WithCache(DefaultCacheSize))

// Compile compiles expression with the shared, cached compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into a filter. The expression must yield
// a boolean; any identifier that is not a helper is looked up among the
// entity's JSON fields at evaluation time.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression", Position: -1}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	f := &Filter{expression: expression, program: program, helpers: c.helpers}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expression
}

// Evaluate runs the filter against entity, which must encode to a JSON
// object.
func (f *Filter) Evaluate(entity any) (bool, error) {
	fields, err := flatten(entity)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Index: -1, Reason: "entity is not a JSON object", Err: err}
	}

	result, err := expr.Run(f.program, f.environment(fields))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Index: -1, Reason: "failed to evaluate expression", Err: err}
	}
	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			Index:      -1,
			Reason:     fmt.Sprintf("expression did not yield a boolean, got %T", result),
		}
	}
	return matched, nil
}

// Match is Evaluate with errors counted as no match
func (f *Filter) Match(entity any) bool {
	ok, err := f.Evaluate(entity)
	return err == nil && ok
}

func (f *Filter) environment(fields map[string]any) map[string]any {
	env := make(map[string]any, len(fields)+len(f.helpers)+1)
	maps.Copy(env, fields)
	maps.Copy(env, f.helpers)
	env["hasTag"] = hasTagFunc(fields["tags"])
	return env
}

// flatten exposes an entity by its JSON field names.
func flatten(entity any) (map[string]any, error) {
	if m, ok := entity.(map[string]any); ok {
		return m, nil
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("entity encodes to null")
	}
	return fields, nil
}

func helperFunctions() map[string]any {
	return map[string]any{
		// placeholder so hasTag type-checks at compile time
		"hasTag": func(string) bool { return false },

		"daysSince": func(v any) int {
			t := toTime(v)
			if t.IsZero() {
				return 0
			}
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"parseDate": func(v any) time.Time {
			return toTime(v)
		},
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   time.Now,
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006-1-2"}

// toTime accepts a time.Time or a date string in one of dateLayouts. Values
// that cannot be read yield the zero time.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func hasTagFunc(raw any) func(string) bool {
	list, _ := raw.([]any)
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, strings.ToLower(s))
		}
	}
	return func(tag string) bool {
		return slices.Contains(tags, strings.ToLower(tag))
	}
}

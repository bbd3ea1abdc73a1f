package tax

import (
	"fmt"
	"strings"
)

// UnsupportedError reports a (jurisdiction, year) pair with no registered
// rule. This is a configuration problem: retrying the same request cannot
// succeed until the tables are extended.
type UnsupportedError struct {
	Jurisdiction string
	Year         int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("tax: unsupported jurisdiction %q for year %d", e.Jurisdiction, e.Year)
}

// Engine dispatches to per-jurisdiction rules. The registry is built once
// at construction and immutable afterwards; Compute is safe for concurrent
// use.
type Engine struct {
	rules map[int]map[string]Rule
}

// NewEngine builds the registry from the built-in tables, with optional
// overrides applied before the registry is sealed.
func NewEngine(overrides ...Override) (*Engine, error) {
	rules2025 := stateRules2025()
	rules2025[JurisdictionFederal] = newFederalRule2025()

	byYear := map[int]map[string]Rule{2025: rules2025}

	for _, o := range overrides {
		if err := o.apply(byYear); err != nil {
			return nil, err
		}
	}

	return &Engine{rules: byYear}, nil
}

// Compute runs the jurisdiction's rule for one period. Unknown codes and
// years return *UnsupportedError; the computation itself never fails.
func (e *Engine) Compute(jurisdiction string, year int, in Input) (Result, error) {
	code := strings.ToUpper(strings.TrimSpace(jurisdiction))
	rule, ok := e.rules[year][code]
	if !ok {
		return Result{}, &UnsupportedError{Jurisdiction: code, Year: year}
	}
	return rule.Compute(in), nil
}

// Supports reports whether a rule is registered for (jurisdiction, year).
func (e *Engine) Supports(jurisdiction string, year int) bool {
	code := strings.ToUpper(strings.TrimSpace(jurisdiction))
	_, ok := e.rules[year][code]
	return ok
}

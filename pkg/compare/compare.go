// Package compare implements the pure comparison operators used by rule
// evaluation. No function here performs I/O; locator resolution belongs to
// the connector layer so comparators stay testable without a network.
package compare

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/carverauto/netaudit/pkg/models"
)

// Outcome is the binary result of a comparison.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// ComparisonError marks input that prevented evaluation: the rule is broken
// or the retrieved value is malformed, which is distinct from the device
// being non-compliant.
type ComparisonError struct {
	Op     models.CompareOperator
	Reason string
	Err    error
}

func (e *ComparisonError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("comparison %s: %s: %v", e.Op, e.Reason, e.Err)
	}

	return fmt.Sprintf("comparison %s: %s", e.Op, e.Reason)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

var errUnknownOperator = fmt.Errorf("unknown comparison operator")

// Evaluate applies a value operator to the retrieved and expected values.
// Existence operators are resolved by retrieval alone; use EvaluateExistence.
func Evaluate(op models.CompareOperator, actual, expected string) (Outcome, error) {
	switch op {
	case models.OpEquals:
		return evaluateEquals(actual, expected), nil
	case models.OpContains:
		return evaluateContains(actual, expected), nil
	case models.OpRegex:
		return evaluateRegex(actual, expected)
	case models.OpNumericRange:
		return evaluateRange(actual, expected)
	case models.OpSemanticDiff:
		return evaluateSemanticDiff(actual, expected)
	case models.OpExists, models.OpNotExists:
		return OutcomeFail, &ComparisonError{Op: op, Reason: "existence operators take no value"}
	default:
		return OutcomeFail, &ComparisonError{Op: op, Reason: "unsupported", Err: errUnknownOperator}
	}
}

// EvaluateExistence maps locator resolution success onto the existence
// operators. The expected value is ignored for these by design.
func EvaluateExistence(op models.CompareOperator, found bool) Outcome {
	switch {
	case op == models.OpExists && found:
		return OutcomePass
	case op == models.OpNotExists && !found:
		return OutcomePass
	default:
		return OutcomeFail
	}
}

// normalizeText collapses runs of whitespace to single spaces and trims the
// ends, so formatting differences in CLI output do not fail a check.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func evaluateEquals(actual, expected string) Outcome {
	if strings.EqualFold(normalizeText(actual), normalizeText(expected)) {
		return OutcomePass
	}

	return OutcomeFail
}

func evaluateContains(actual, expected string) Outcome {
	a := strings.ToLower(normalizeText(actual))
	e := strings.ToLower(normalizeText(expected))

	if strings.Contains(a, e) {
		return OutcomePass
	}

	return OutcomeFail
}

// evaluateRegex matches the whole value unless the pattern carries its own
// anchors.
func evaluateRegex(actual, pattern string) (Outcome, error) {
	anchored := pattern

	if !strings.HasPrefix(pattern, "^") && !strings.HasSuffix(pattern, "$") {
		anchored = `\A(?s:` + pattern + `)\z`
	}

	re, err := regexp.Compile(anchored)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpRegex, Reason: "invalid pattern", Err: err}
	}

	if re.MatchString(strings.TrimSpace(actual)) {
		return OutcomePass, nil
	}

	return OutcomeFail, nil
}

// evaluateRange parses expected as "min,max" and actual as a number.
func evaluateRange(actual, expected string) (Outcome, error) {
	parts := strings.SplitN(expected, ",", 2)
	if len(parts) != 2 {
		return OutcomeFail, &ComparisonError{Op: models.OpNumericRange, Reason: "expected value must be 'min,max'"}
	}

	minVal, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpNumericRange, Reason: "unparsable min", Err: err}
	}

	maxVal, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpNumericRange, Reason: "unparsable max", Err: err}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpNumericRange, Reason: "actual value not numeric", Err: err}
	}

	if value >= minVal && value <= maxVal {
		return OutcomePass, nil
	}

	return OutcomeFail, nil
}

// evaluateSemanticDiff compares both sides as structured data, ignoring key
// order and whitespace-only differences. JSON is tried first; non-JSON input
// falls back to an indentation-based config tree. A parse failure on either
// side is an evaluation error, not a compliance failure.
func evaluateSemanticDiff(actual, expected string) (Outcome, error) {
	av, err := parseStructured(actual)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpSemanticDiff, Reason: "unparsable actual", Err: err}
	}

	ev, err := parseStructured(expected)
	if err != nil {
		return OutcomeFail, &ComparisonError{Op: models.OpSemanticDiff, Reason: "unparsable expected", Err: err}
	}

	if semanticEqual(av, ev) {
		return OutcomePass, nil
	}

	return OutcomeFail, nil
}

func parseStructured(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("empty value")
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}

		return v, nil
	}

	return parseConfigTree(trimmed), nil
}

// parseConfigTree builds a nested map from indentation-structured vendor
// configuration text. Each line becomes a key; deeper-indented lines below
// it become its children.
func parseConfigTree(text string) map[string]any {
	type frame struct {
		indent int
		node   map[string]any
	}

	root := make(map[string]any)
	stack := []frame{{indent: -1, node: root}}

	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		key := normalizeText(raw)

		for len(stack) > 1 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		child := make(map[string]any)
		stack[len(stack)-1].node[key] = child
		stack = append(stack, frame{indent: indent, node: child})
	}

	return root
}

// semanticEqual deep-compares two structures, normalizing string scalars.
func semanticEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for k, v := range av {
			bval, ok := lookupNormalized(bv, k)
			if !ok || !semanticEqual(v, bval) {
				return false
			}
		}

		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !semanticEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	case string:
		bv, ok := b.(string)
		return ok && normalizeText(av) == normalizeText(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// lookupNormalized finds a map entry under whitespace normalization of the key.
func lookupNormalized(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}

	want := normalizeText(key)

	for k, v := range m {
		if normalizeText(k) == want {
			return v, true
		}
	}

	return nil, false
}

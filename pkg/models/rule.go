package models

// Severity orders rule importance from low to critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of the severity; unknown severities
// rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}

	return -1
}

// CompareOperator enumerates the supported check comparison operators.
type CompareOperator string

const (
	OpEquals       CompareOperator = "equals"
	OpContains     CompareOperator = "contains"
	OpRegex        CompareOperator = "regex"
	OpNumericRange CompareOperator = "range"
	OpExists       CompareOperator = "exists"
	OpNotExists    CompareOperator = "not-exists"
	OpSemanticDiff CompareOperator = "semantic-diff"
)

// RuleCheck is one self-contained verification within a rule: a locator to
// retrieve, an operator, and the expected value. ExpectedConfig, when set,
// is the literal corrective configuration remediation pushes back on failure.
type RuleCheck struct {
	Locator        string          `json:"locator"`
	Operator       CompareOperator `json:"operator"`
	Expected       string          `json:"expected,omitempty"`
	ExpectedConfig string          `json:"expected_config,omitempty"`
	Severity       *Severity       `json:"severity,omitempty"`
}

// AuditRule groups ordered checks under a named, severity-tagged rule.
// Rules are created externally and consumed read-only by the engine.
type AuditRule struct {
	ID       string      `json:"rule_id"`
	Name     string      `json:"name"`
	Severity Severity    `json:"severity"`
	Category string      `json:"category,omitempty"`
	Vendors  []VendorTag `json:"vendors,omitempty"`
	Enabled  bool        `json:"enabled"`
	Checks   []RuleCheck `json:"checks"`
}

// AppliesTo reports whether the rule targets the device's vendor. An empty
// vendor set applies to every vendor.
func (r *AuditRule) AppliesTo(vendor VendorTag) bool {
	if len(r.Vendors) == 0 {
		return true
	}

	for _, v := range r.Vendors {
		if v == vendor || v.SameFamily(vendor) {
			return true
		}
	}

	return false
}

// CheckSeverity resolves the effective severity of check i, honoring the
// per-check override.
func (r *AuditRule) CheckSeverity(i int) Severity {
	if i >= 0 && i < len(r.Checks) && r.Checks[i].Severity != nil {
		return *r.Checks[i].Severity
	}

	return r.Severity
}

// RuleFilter narrows a rule lookup against the external store.
type RuleFilter struct {
	IDs      []string  `json:"ids,omitempty"`
	Names    []string  `json:"names,omitempty"`
	Vendor   VendorTag `json:"vendor,omitempty"`
	Category string    `json:"category,omitempty"`
	Enabled  *bool     `json:"enabled,omitempty"`
}

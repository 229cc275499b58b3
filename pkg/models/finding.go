package models

import (
	"math"
	"time"
)

// FindingStatus is the outcome of evaluating one check against one device.
type FindingStatus string

const (
	FindingPass  FindingStatus = "pass"
	FindingFail  FindingStatus = "fail"
	FindingError FindingStatus = "error"
)

// AuditFinding records one check evaluation. Findings are immutable once
// produced. Locator and ExpectedConfig are carried forward so remediation
// can act on a failed finding without re-fetching the rule.
type AuditFinding struct {
	RuleName       string        `json:"rule_name"`
	CheckIndex     int           `json:"check_index"`
	Status         FindingStatus `json:"status"`
	Actual         string        `json:"actual,omitempty"`
	Expected       string        `json:"expected,omitempty"`
	Severity       Severity      `json:"severity"`
	ExpectedConfig string        `json:"expected_config,omitempty"`
	Locator        string        `json:"locator,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// AuditResult is the outcome of one device audit: the full finding list plus
// the compliance percentage computed once at creation time.
type AuditResult struct {
	ID         string         `json:"result_id"`
	DeviceID   string         `json:"device_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Findings   []AuditFinding `json:"findings"`
	Passed     int            `json:"passed"`
	Failed     int            `json:"failed"`
	Errors     int            `json:"errors"`
	Compliance float64        `json:"compliance"`
	Message    string         `json:"message,omitempty"`
}

// ComputeCompliance tallies the findings and sets the compliance percentage.
// Error findings count in the denominator so connector failures visibly
// depress the score. Rounded to one decimal.
func (r *AuditResult) ComputeCompliance() {
	r.Passed, r.Failed, r.Errors = 0, 0, 0

	for i := range r.Findings {
		switch r.Findings[i].Status {
		case FindingPass:
			r.Passed++
		case FindingFail:
			r.Failed++
		case FindingError:
			r.Errors++
		}
	}

	total := len(r.Findings)
	if total == 0 {
		r.Compliance = 0
		return
	}

	r.Compliance = math.Round(float64(r.Passed)/float64(total)*1000) / 10
}

package models

import "time"

// CommandStatus tracks one remediation command through its lifecycle.
type CommandStatus string

const (
	CommandPending   CommandStatus = "pending"
	CommandValidated CommandStatus = "validated"
	CommandApplied   CommandStatus = "applied"
	CommandFailed    CommandStatus = "failed"
)

// RemediationCommand is derived from a failed finding with a known
// corrective configuration. Ephemeral: built per run, never persisted as
// its own entity.
type RemediationCommand struct {
	RuleName string        `json:"rule_name"`
	Config   string        `json:"config"`
	Severity Severity      `json:"severity"`
	Locator  string        `json:"locator,omitempty"`
	Status   CommandStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
}

// RemediationResult reports one device's remediation run. Each command's
// outcome is recorded independently; application is best-effort, not
// all-or-nothing.
type RemediationResult struct {
	DeviceID  string               `json:"device_id"`
	Success   bool                 `json:"success"`
	Message   string               `json:"message,omitempty"`
	Commands  []RemediationCommand `json:"commands,omitempty"`
	DryRun    bool                 `json:"dry_run"`
	Timestamp time.Time            `json:"timestamp"`
}

// AppliedCount returns the number of commands that reached applied status.
func (r *RemediationResult) AppliedCount() int {
	n := 0

	for i := range r.Commands {
		if r.Commands[i].Status == CommandApplied {
			n++
		}
	}

	return n
}

// RemediationSummary aggregates a bulk remediation run. Every requested
// device appears exactly once in Results.
type RemediationSummary struct {
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
	Results    []*RemediationResult `json:"results"`
}

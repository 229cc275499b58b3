package models

import (
	"time"
)

// DeviceStatus represents the operational state of a managed device.
type DeviceStatus string

const (
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusUnreachable DeviceStatus = "unreachable"
	DeviceStatusUnknown     DeviceStatus = "unknown"
)

// Credentials holds the authentication material for a device's management
// plane. SSHKey takes precedence over Password when both are set.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	SSHKey   []byte `json:"ssh_key,omitempty"`
}

// Device represents a network device under audit. Inventory fields are
// owned by the external persistence layer; the engine only mutates the
// compliance score and the backoff fields after an audit or health attempt.
type Device struct {
	ID                  string            `json:"device_id"`
	Hostname            string            `json:"hostname"`
	IP                  string            `json:"ip"`
	Port                int               `json:"port,omitempty"`
	Vendor              VendorTag         `json:"vendor"`
	Credentials         Credentials       `json:"credentials"`
	Status              DeviceStatus      `json:"status"`
	ComplianceScore     float64           `json:"compliance_score"`
	ConsecutiveFailures int               `json:"consecutive_failures"`
	LastCheckAttempt    *time.Time        `json:"last_check_attempt,omitempty"`
	NextCheckDue        *time.Time        `json:"next_check_due,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// DeviceGroup is a named collection of devices used for fan-out deployment.
type DeviceGroup struct {
	ID        string   `json:"group_id"`
	Name      string   `json:"name"`
	DeviceIDs []string `json:"device_ids"`
}

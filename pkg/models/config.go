package models

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration value")

// Duration is a wrapper around time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}

		*d = Duration(tmp)
	default:
		return ErrInvalidDuration
	}

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// ConnectorConfig tunes device session behavior shared by all vendors.
type ConnectorConfig struct {
	ConnectTimeout Duration `json:"connect_timeout,omitempty"`
	CommandTimeout Duration `json:"command_timeout,omitempty"`
	QuietPeriod    Duration `json:"quiet_period,omitempty"`
}

// AuditConfig tunes the rule evaluation engine.
type AuditConfig struct {
	Concurrency   int      `json:"concurrency,omitempty"`
	DeviceTimeout Duration `json:"device_timeout,omitempty"`
	ConnectRate   float64  `json:"connect_rate,omitempty"` // connects/sec across the fan-out, 0 = unlimited
}

// RemediationConfig tunes the remediation engine. BackupEnabled is the
// operational toggle gating pre-change snapshots; the engine must tolerate
// backups being skipped entirely.
type RemediationConfig struct {
	Concurrency   int      `json:"concurrency,omitempty"`
	DeviceTimeout Duration `json:"device_timeout,omitempty"`
	BackupEnabled bool     `json:"backup_enabled"`
}

// DeployConfig tunes template deployment fan-out.
type DeployConfig struct {
	Concurrency   int      `json:"concurrency,omitempty"`
	DeviceTimeout Duration `json:"device_timeout,omitempty"`
	BackupEnabled bool     `json:"backup_enabled"`
}

// CoreConfig is the top-level configuration for the netaudit engines.
type CoreConfig struct {
	Connector   ConnectorConfig   `json:"connector"`
	Audit       AuditConfig       `json:"audit"`
	Remediation RemediationConfig `json:"remediation"`
	Deploy      DeployConfig      `json:"deploy"`
	NATS        *NATSConfig       `json:"nats,omitempty"`
	Events      EventsConfig      `json:"events"`
}

// Validate checks sub-configurations and applies defaults.
func (c *CoreConfig) Validate() error {
	if c.Events.Enabled {
		if c.NATS == nil {
			return errors.New("events enabled but nats configuration missing")
		}

		if err := c.NATS.Validate(); err != nil {
			return err
		}
	}

	return c.Events.Validate()
}

/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"fmt"
	"time"
)

// NATSConfig configures NATS connectivity for event publishing.
type NATSConfig struct {
	URL    string `json:"url"`
	Domain string `json:"domain,omitempty"`
}

// Validate ensures the NATS configuration is valid.
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	return nil
}

// EventsConfig configures the event publishing system.
type EventsConfig struct {
	Enabled    bool     `json:"enabled"`
	StreamName string   `json:"stream_name"`
	Subjects   []string `json:"subjects"`
}

// Validate ensures the events configuration is valid and applies defaults.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.StreamName == "" {
		c.StreamName = "events"
	}

	if len(c.Subjects) == 0 {
		c.Subjects = []string{"events.audit.*", "events.backup.*", "events.remediation.*"}
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// ReAuditRequestData is the payload of a fire-and-forget re-audit trigger
// emitted after remediation. Rules are identified by name and re-resolved
// to current rule IDs by the audit subsystem consuming the event.
type ReAuditRequestData struct {
	DeviceIDs   []string  `json:"device_ids"`
	RuleNames   []string  `json:"rule_names,omitempty"`
	TriggeredBy string    `json:"triggered_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// BackupFailureEventData is the payload emitted when a pre-change backup
// could not be taken.
type BackupFailureEventData struct {
	DeviceID    string    `json:"device_id"`
	TriggeredBy string    `json:"triggered_by"`
	Error       string    `json:"error"`
	Timestamp   time.Time `json:"timestamp"`
}

// RemediationFailureEventData is the payload emitted when a device's
// remediation run fails outright.
type RemediationFailureEventData struct {
	DeviceID  string    `json:"device_id"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

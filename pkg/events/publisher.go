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

// Package events publishes CloudEvents to NATS JetStream. Publishing is
// fire-and-forget from the engines' point of view: a publish failure is
// logged by the caller and never changes an operation's outcome.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

const (
	eventSource = "netaudit/core"

	subjectReAuditRequest     = "events.audit.request"
	subjectBackupFailure      = "events.backup.failure"
	subjectRemediationFailure = "events.remediation.failure"

	typeReAuditRequest     = "com.carverauto.netaudit.audit.request"
	typeBackupFailure      = "com.carverauto.netaudit.backup.failure"
	typeRemediationFailure = "com.carverauto.netaudit.remediation.failure"
)

// Publisher emits the engines' notification events.
type Publisher interface {
	// PublishReAuditRequest asks the audit subsystem to re-check devices
	// after a remediation run.
	PublishReAuditRequest(ctx context.Context, data *models.ReAuditRequestData) error

	// PublishBackupFailure reports a pre-change backup that could not be
	// taken.
	PublishBackupFailure(ctx context.Context, data *models.BackupFailureEventData) error

	// PublishRemediationFailure reports a device whose remediation run
	// failed outright.
	PublishRemediationFailure(ctx context.Context, data *models.RemediationFailureEventData) error
}

// EventPublisher publishes CloudEvents to a JetStream stream.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	log    logger.Logger
}

// NewEventPublisher creates an EventPublisher for the given stream.
func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
		log:    log,
	}
}

// PublishReAuditRequest publishes a re-audit trigger event.
func (p *EventPublisher) PublishReAuditRequest(ctx context.Context, data *models.ReAuditRequestData) error {
	return p.publish(ctx, typeReAuditRequest, subjectReAuditRequest, data.Timestamp, data)
}

// PublishBackupFailure publishes a backup failure event.
func (p *EventPublisher) PublishBackupFailure(ctx context.Context, data *models.BackupFailureEventData) error {
	return p.publish(ctx, typeBackupFailure, subjectBackupFailure, data.Timestamp, data)
}

// PublishRemediationFailure publishes a remediation failure event.
func (p *EventPublisher) PublishRemediationFailure(ctx context.Context, data *models.RemediationFailureEventData) error {
	return p.publish(ctx, typeRemediationFailure, subjectRemediationFailure, data.Timestamp, data)
}

// newEvent wraps a payload in the CloudEvents v1.0 envelope. A zero
// timestamp defaults to now.
func newEvent(eventType, subject string, ts time.Time, data any) models.CloudEvent {
	if ts.IsZero() {
		ts = time.Now()
	}

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &ts,
		Data:            data,
	}
}

func (p *EventPublisher) publish(ctx context.Context, eventType, subject string, ts time.Time, data any) error {
	event := newEvent(eventType, subject, ts, data)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", event.Subject, err)
	}

	p.log.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}

// CreateEventPublisher builds a JetStream publisher on an existing NATS
// connection, creating the stream when it does not exist yet. Domain is
// optional and selects a JetStream domain for leaf-node setups.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, natsCfg *models.NATSConfig, eventsCfg *models.EventsConfig, log logger.Logger) (*EventPublisher, error) {
	var (
		js  jetstream.JetStream
		err error
	)

	if natsCfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, natsCfg.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", natsCfg.Domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	if _, err = js.Stream(ctx, eventsCfg.StreamName); err != nil {
		streamConfig := jetstream.StreamConfig{
			Name:     eventsCfg.StreamName,
			Subjects: eventsCfg.Subjects,
		}

		if _, err = js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			return nil, fmt.Errorf("failed to create or get stream %s: %w", eventsCfg.StreamName, err)
		}

		log.Info().Str("stream", eventsCfg.StreamName).Msg("Created NATS JetStream stream")
	}

	return NewEventPublisher(js, eventsCfg.StreamName, log), nil
}

// NoopPublisher discards all events. Used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishReAuditRequest(context.Context, *models.ReAuditRequestData) error {
	return nil
}

func (NoopPublisher) PublishBackupFailure(context.Context, *models.BackupFailureEventData) error {
	return nil
}

func (NoopPublisher) PublishRemediationFailure(context.Context, *models.RemediationFailureEventData) error {
	return nil
}

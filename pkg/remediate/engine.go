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

// Package remediate converts failed audit findings with known corrective
// configuration into per-device apply batches, with backup, dry-run and
// re-audit semantics. Application is best-effort per command: distinct
// rules are usually independent, so one rejected command does not stop its
// siblings.
package remediate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/events"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

const (
	defaultConcurrency = 5

	triggeredByRemediation = "remediation"
)

// Engine runs remediation batches.
type Engine struct {
	store     store.Store
	registry  connector.Registry
	cfg       models.RemediationConfig
	connCfg   *models.ConnectorConfig
	publisher events.Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewEngine creates a remediation engine. The publisher may be a
// NoopPublisher when eventing is disabled.
func NewEngine(st store.Store, registry connector.Registry, cfg *models.CoreConfig, publisher events.Publisher, log logger.Logger) *Engine {
	return &Engine{
		store:     st,
		registry:  registry,
		cfg:       cfg.Remediation,
		connCfg:   &cfg.Connector,
		publisher: publisher,
		log:       log.WithComponent("remediate"),
		now:       time.Now,
	}
}

// Remediate runs the per-device remediation flow for each device
// independently; one device's failure never aborts the others. Every
// supplied device ID appears exactly once in the summary.
func (e *Engine) Remediate(ctx context.Context, deviceIDs []string, dryRun, reAudit bool) *models.RemediationSummary {
	results := make([]*models.RemediationResult, len(deviceIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())

	for i, deviceID := range deviceIDs {
		g.Go(func() error {
			dctx := gctx

			if d := time.Duration(e.cfg.DeviceTimeout); d > 0 {
				var cancel context.CancelFunc

				dctx, cancel = context.WithTimeout(gctx, d)
				defer cancel()
			}

			results[i] = e.remediateDevice(dctx, deviceID, dryRun, reAudit)

			return nil
		})
	}

	_ = g.Wait()

	summary := &models.RemediationSummary{Results: results}

	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	return summary
}

func (e *Engine) concurrency() int {
	if e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}

	return defaultConcurrency
}

func (e *Engine) remediateDevice(ctx context.Context, deviceID string, dryRun, reAudit bool) *models.RemediationResult {
	result := &models.RemediationResult{
		DeviceID:  deviceID,
		DryRun:    dryRun,
		Timestamp: e.now(),
	}

	device, err := e.store.GetDevice(ctx, deviceID)
	if err != nil {
		return e.deviceFailed(ctx, result, fmt.Sprintf("failed to load device: %v", err), true)
	}

	latest, err := e.store.GetLatestAuditResult(ctx, deviceID)
	if err != nil {
		return e.deviceFailed(ctx, result, fmt.Sprintf("failed to load audit results: %v", err), true)
	}

	if latest == nil {
		// A device that has never been audited is a data condition, not an
		// operational failure; no notification is emitted.
		return e.deviceFailed(ctx, result, "no audit results found", false)
	}

	result.Commands = buildCommands(latest.Findings)
	if len(result.Commands) == 0 {
		result.Success = true
		result.Message = "nothing to remediate"

		return result
	}

	if dryRun {
		// Validation only; this path never opens a device session.
		for i := range result.Commands {
			result.Commands[i].Status = models.CommandValidated
		}

		result.Success = true
		result.Message = fmt.Sprintf("%d commands validated", len(result.Commands))

		return result
	}

	if err := e.apply(ctx, device, result); err != nil {
		return e.deviceFailed(ctx, result, err.Error(), true)
	}

	applied := result.AppliedCount()
	result.Success = applied > 0
	result.Message = fmt.Sprintf("%d of %d commands applied", applied, len(result.Commands))

	if !result.Success {
		e.notifyFailure(ctx, deviceID, result.Message)
	}

	if reAudit && applied > 0 {
		e.triggerReAudit(ctx, deviceID, result)
	}

	return result
}

// buildCommands derives one command per failed finding that carries a
// corrective configuration, preserving finding order.
func buildCommands(findings []models.AuditFinding) []models.RemediationCommand {
	var commands []models.RemediationCommand

	for i := range findings {
		f := &findings[i]
		if f.Status != models.FindingFail || f.ExpectedConfig == "" {
			continue
		}

		commands = append(commands, models.RemediationCommand{
			RuleName: f.RuleName,
			Config:   f.ExpectedConfig,
			Severity: f.Severity,
			Locator:  f.Locator,
			Status:   models.CommandPending,
		})
	}

	return commands
}

// apply connects to the device and pushes each command, recording outcomes
// independently. A connection failure aborts this device only; the session
// is released on every exit path.
func (e *Engine) apply(ctx context.Context, device *models.Device, result *models.RemediationResult) error {
	conn, err := e.registry.Get(device, e.connCfg, e.log)
	if err != nil {
		return err
	}

	if err := conn.Connect(ctx); err != nil {
		return err
	}

	defer conn.Disconnect()

	if e.cfg.BackupEnabled {
		e.takeBackup(ctx, conn, device.ID)
	}

	modelDriven := device.Vendor.Family() == models.FamilyNokia

	for i := range result.Commands {
		cmd := &result.Commands[i]

		req, err := e.buildEditRequest(cmd, modelDriven)
		if err != nil {
			cmd.Status = models.CommandFailed
			cmd.Error = err.Error()

			e.log.Warn().Err(err).
				Str("device_id", device.ID).
				Str("rule", cmd.RuleName).
				Msg("Skipping unparsable remediation payload")

			continue
		}

		if err := conn.EditConfig(ctx, req); err != nil {
			cmd.Status = models.CommandFailed
			cmd.Error = err.Error()

			e.log.Warn().Err(err).
				Str("device_id", device.ID).
				Str("rule", cmd.RuleName).
				Msg("Remediation command rejected")

			continue
		}

		cmd.Status = models.CommandApplied
	}

	return nil
}

// buildEditRequest prepares one command's apply request. Model-driven
// payloads that look like JSON are decoded, with trailing-comma repair,
// before crossing the connector boundary.
func (e *Engine) buildEditRequest(cmd *models.RemediationCommand, modelDriven bool) (*connector.EditRequest, error) {
	req := &connector.EditRequest{
		Payload:  cmd.Config,
		Locator:  cmd.Locator,
		Validate: true,
	}

	if !modelDriven {
		return req, nil
	}

	structured, repaired, err := decodeStructured(cmd.Config)
	if err != nil {
		return nil, fmt.Errorf("corrective config is not valid JSON: %w", err)
	}

	if structured != nil {
		req.Structured = structured
		req.Payload = ""
	}

	if repaired {
		e.log.Warn().
			Str("rule", cmd.RuleName).
			Msg("Repaired trailing commas in corrective config")
	}

	return req, nil
}

// takeBackup snapshots the running config before any change. Best-effort:
// a backup failure is reported through events, never blocks remediation.
func (e *Engine) takeBackup(ctx context.Context, conn connector.Connector, deviceID string) {
	config, err := conn.GetConfig(ctx)
	if err == nil {
		backup := &models.ConfigBackup{
			ID:          uuid.New().String(),
			DeviceID:    deviceID,
			Config:      config,
			Hash:        models.ContentHash(config),
			TriggeredBy: triggeredByRemediation,
			CreatedAt:   e.now(),
		}

		err = e.store.SaveBackup(ctx, backup)
	}

	if err != nil {
		e.log.Warn().Err(err).Str("device_id", deviceID).Msg("Pre-change backup failed")

		if pubErr := e.publisher.PublishBackupFailure(context.WithoutCancel(ctx), &models.BackupFailureEventData{
			DeviceID:    deviceID,
			TriggeredBy: triggeredByRemediation,
			Error:       err.Error(),
			Timestamp:   e.now(),
		}); pubErr != nil {
			e.log.Error().Err(pubErr).Msg("Failed to publish backup failure event")
		}
	}
}

// triggerReAudit asks the audit subsystem to re-check the device against
// the rules whose commands were applied. Fire-and-forget: a publish failure
// is logged and never flips the remediation result.
func (e *Engine) triggerReAudit(ctx context.Context, deviceID string, result *models.RemediationResult) {
	names := make([]string, 0, len(result.Commands))
	seen := make(map[string]struct{}, len(result.Commands))

	for i := range result.Commands {
		cmd := &result.Commands[i]
		if cmd.Status != models.CommandApplied {
			continue
		}

		if _, ok := seen[cmd.RuleName]; ok {
			continue
		}

		seen[cmd.RuleName] = struct{}{}
		names = append(names, cmd.RuleName)
	}

	data := &models.ReAuditRequestData{
		DeviceIDs:   []string{deviceID},
		RuleNames:   names,
		TriggeredBy: triggeredByRemediation,
		Timestamp:   e.now(),
	}

	if err := e.publisher.PublishReAuditRequest(context.WithoutCancel(ctx), data); err != nil {
		e.log.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to trigger re-audit")
	}
}

func (e *Engine) deviceFailed(ctx context.Context, result *models.RemediationResult, msg string, notify bool) *models.RemediationResult {
	result.Success = false
	result.Message = msg

	e.log.Warn().Str("device_id", result.DeviceID).Str("reason", msg).Msg("Remediation failed")

	if notify {
		e.notifyFailure(ctx, result.DeviceID, msg)
	}

	return result
}

func (e *Engine) notifyFailure(ctx context.Context, deviceID, msg string) {
	if err := e.publisher.PublishRemediationFailure(context.WithoutCancel(ctx), &models.RemediationFailureEventData{
		DeviceID:  deviceID,
		Error:     msg,
		Timestamp: e.now(),
	}); err != nil {
		e.log.Error().Err(err).Msg("Failed to publish remediation failure event")
	}
}

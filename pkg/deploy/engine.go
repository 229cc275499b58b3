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

// Package deploy renders parameterized configuration templates and pushes
// them through the same connector/backup/apply pipeline remediation uses.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

const (
	defaultConcurrency = 5

	triggeredByDeployment = "deployment"
)

// Engine deploys templates to devices.
type Engine struct {
	store    store.Store
	registry connector.Registry
	cfg      models.DeployConfig
	connCfg  *models.ConnectorConfig
	log      logger.Logger
	now      func() time.Time
}

// NewEngine creates a deployment engine.
func NewEngine(st store.Store, registry connector.Registry, cfg *models.CoreConfig, log logger.Logger) *Engine {
	return &Engine{
		store:    st,
		registry: registry,
		cfg:      cfg.Deploy,
		connCfg:  &cfg.Connector,
		log:      log.WithComponent("deploy"),
		now:      time.Now,
	}
}

// Deploy runs the single-device pipeline: vendor match, variable
// validation, render, pending record, then dry-run validation or backup
// plus apply. Render failures abort before any network I/O.
func (e *Engine) Deploy(ctx context.Context, templateID, deviceID string, variables map[string]string, dryRun bool) *models.TemplateDeployment {
	deployment := &models.TemplateDeployment{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		DeviceID:   deviceID,
		Variables:  variables,
		Status:     models.DeploymentPending,
		DryRun:     dryRun,
		CreatedAt:  e.now(),
	}

	tmpl, err := e.store.GetTemplate(ctx, templateID)
	if err != nil {
		return e.failBeforeRecord(deployment, fmt.Sprintf("failed to load template: %v", err))
	}

	device, err := e.store.GetDevice(ctx, deviceID)
	if err != nil {
		return e.failBeforeRecord(deployment, fmt.Sprintf("failed to load device: %v", err))
	}

	if !tmpl.Vendor.SameFamily(device.Vendor) {
		return e.failBeforeRecord(deployment, fmt.Sprintf(
			"template vendor %s does not match device vendor %s", tmpl.Vendor, device.Vendor))
	}

	if err := ValidateVariables(tmpl, variables); err != nil {
		return e.failBeforeRecord(deployment, err.Error())
	}

	rendered, err := Render(tmpl.Name, tmpl.Body, resolveVariables(tmpl, variables))
	if err != nil {
		return e.failBeforeRecord(deployment, err.Error())
	}

	deployment.Rendered = rendered

	if err := e.store.SaveDeployment(ctx, deployment); err != nil {
		return e.failBeforeRecord(deployment, fmt.Sprintf("failed to record deployment: %v", err))
	}

	if dryRun {
		// Rendered output is returned for operator review; no session is
		// opened.
		e.finish(ctx, deployment, models.DeploymentValidated, "")
		return deployment
	}

	if err := e.applyDeployment(ctx, tmpl, device, deployment); err != nil {
		e.finish(ctx, deployment, models.DeploymentFailed, err.Error())
		return deployment
	}

	e.finish(ctx, deployment, models.DeploymentSuccess, "")

	if err := e.store.IncrementTemplateUsage(context.WithoutCancel(ctx), tmpl.ID); err != nil {
		e.log.Warn().Err(err).Str("template_id", tmpl.ID).Msg("Failed to bump template usage")
	}

	return deployment
}

// DeployBulk fans the single-device pipeline out over the devices with
// independent failure isolation.
func (e *Engine) DeployBulk(ctx context.Context, templateID string, deviceIDs []string, variables map[string]string, dryRun bool) *models.DeploymentSummary {
	results := make([]*models.TemplateDeployment, len(deviceIDs))

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

			results[i] = e.Deploy(dctx, templateID, deviceID, variables, dryRun)

			return nil
		})
	}

	_ = g.Wait()

	summary := &models.DeploymentSummary{Results: results}

	for _, r := range results {
		if r.Status == models.DeploymentFailed {
			summary.Failed++
		} else {
			summary.Successful++
		}
	}

	return summary
}

// DeployGroups resolves group membership to a de-duplicated device set,
// then delegates to bulk. A device in multiple groups is deployed to
// exactly once.
func (e *Engine) DeployGroups(ctx context.Context, templateID string, groupIDs []string, variables map[string]string, dryRun bool) (*models.DeploymentSummary, error) {
	var deviceIDs []string

	seen := make(map[string]struct{})

	for _, groupID := range groupIDs {
		devices, err := e.store.GetGroupDevices(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve group %s: %w", groupID, err)
		}

		for _, device := range devices {
			if _, ok := seen[device.ID]; ok {
				continue
			}

			seen[device.ID] = struct{}{}
			deviceIDs = append(deviceIDs, device.ID)
		}
	}

	return e.DeployBulk(ctx, templateID, deviceIDs, variables, dryRun), nil
}

func (e *Engine) concurrency() int {
	if e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}

	return defaultConcurrency
}

// applyDeployment opens the session, snapshots the config when backups are
// enabled, and pushes the rendered payload. The session is released on
// every exit path.
func (e *Engine) applyDeployment(ctx context.Context, tmpl *models.ConfigTemplate, device *models.Device, deployment *models.TemplateDeployment) error {
	conn, err := e.registry.Get(device, e.connCfg, e.log)
	if err != nil {
		return err
	}

	if err := conn.Connect(ctx); err != nil {
		return err
	}

	defer conn.Disconnect()

	if e.cfg.BackupEnabled {
		e.takeBackup(ctx, conn, device.ID, deployment)
	}

	req, err := buildEditRequest(tmpl, device, deployment.Rendered)
	if err != nil {
		return err
	}

	return conn.EditConfig(ctx, req)
}

// buildEditRequest shapes the rendered payload for the device dialect.
// Model-driven vendors with a template locator get a structured
// XPath-addressed apply; everything else gets raw text.
func buildEditRequest(tmpl *models.ConfigTemplate, device *models.Device, rendered string) (*connector.EditRequest, error) {
	req := &connector.EditRequest{
		Payload:  rendered,
		Locator:  tmpl.Locator,
		Validate: true,
	}

	if tmpl.Locator == "" || device.Vendor.Family() != models.FamilyNokia {
		return req, nil
	}

	var structured map[string]any
	if err := json.Unmarshal([]byte(rendered), &structured); err != nil {
		return nil, fmt.Errorf("rendered payload is not valid JSON for locator apply: %w", err)
	}

	req.Structured = structured
	req.Payload = ""

	return req, nil
}

// takeBackup snapshots the running config before the change. Best-effort;
// a failure is logged and the deployment continues.
func (e *Engine) takeBackup(ctx context.Context, conn connector.Connector, deviceID string, deployment *models.TemplateDeployment) {
	config, err := conn.GetConfig(ctx)
	if err != nil {
		e.log.Warn().Err(err).Str("device_id", deviceID).Msg("Pre-deployment backup failed")
		return
	}

	backup := &models.ConfigBackup{
		ID:          uuid.New().String(),
		DeviceID:    deviceID,
		Config:      config,
		Hash:        models.ContentHash(config),
		TriggeredBy: triggeredByDeployment,
		CreatedAt:   e.now(),
	}

	if err := e.store.SaveBackup(ctx, backup); err != nil {
		e.log.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to save backup")
		return
	}

	deployment.BackupID = backup.ID
}

// failBeforeRecord finalizes a deployment that failed before the pending
// record was persisted. Nothing to update in the store; the caller gets
// the failed record back.
func (e *Engine) failBeforeRecord(deployment *models.TemplateDeployment, msg string) *models.TemplateDeployment {
	now := e.now()

	deployment.Status = models.DeploymentFailed
	deployment.Error = msg
	deployment.CompletedAt = &now

	e.log.Warn().
		Str("device_id", deployment.DeviceID).
		Str("template_id", deployment.TemplateID).
		Str("reason", msg).
		Msg("Deployment failed")

	return deployment
}

// finish sets terminal state and persists it. The session context may be
// expired here, so the update runs detached from its cancellation.
func (e *Engine) finish(ctx context.Context, deployment *models.TemplateDeployment, status models.DeploymentStatus, errMsg string) {
	now := e.now()

	deployment.Status = status
	deployment.Error = errMsg
	deployment.CompletedAt = &now

	if err := e.store.UpdateDeployment(context.WithoutCancel(ctx), deployment); err != nil {
		e.log.Error().Err(err).Str("deployment_id", deployment.ID).Msg("Failed to update deployment record")
	}
}

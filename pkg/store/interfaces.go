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

//go:generate mockgen -destination=mock_store.go -package=store github.com/carverauto/netaudit/pkg/store Store

// Package store defines the persistence collaborator contract. The engines
// never talk to a database directly; the backing implementation is supplied
// by the embedding application.
package store

import (
	"context"

	"github.com/carverauto/netaudit/pkg/models"
)

// Store is the persistence boundary of the audit, remediation and
// deployment engines.
type Store interface {
	// GetDevice returns the device with the given ID.
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// GetDevices returns the devices for the given IDs. A missing ID is an
	// error; callers rely on a complete inventory answer.
	GetDevices(ctx context.Context, deviceIDs []string) ([]*models.Device, error)

	// GetRules returns audit rules matching the filter. A nil filter
	// returns all enabled rules.
	GetRules(ctx context.Context, filter *models.RuleFilter) ([]*models.AuditRule, error)

	// GetTemplate returns the configuration template with the given ID.
	GetTemplate(ctx context.Context, templateID string) (*models.ConfigTemplate, error)

	// GetGroupDevices resolves a device group to its member devices.
	GetGroupDevices(ctx context.Context, groupID string) ([]*models.Device, error)

	// GetLatestAuditResult returns the most recent audit result for the
	// device, or nil when the device has never been audited.
	GetLatestAuditResult(ctx context.Context, deviceID string) (*models.AuditResult, error)

	// SaveAuditResult persists a completed audit result.
	SaveAuditResult(ctx context.Context, result *models.AuditResult) error

	// SaveDeployment persists a new deployment record.
	SaveDeployment(ctx context.Context, deployment *models.TemplateDeployment) error

	// UpdateDeployment persists terminal state changes to a deployment.
	UpdateDeployment(ctx context.Context, deployment *models.TemplateDeployment) error

	// SaveBackup persists a pre-change configuration snapshot.
	SaveBackup(ctx context.Context, backup *models.ConfigBackup) error

	// UpdateDeviceStatus persists the device's status, compliance score and
	// backoff fields after a check attempt.
	UpdateDeviceStatus(ctx context.Context, device *models.Device) error

	// IncrementTemplateUsage bumps the template usage counter after a
	// successful deployment.
	IncrementTemplateUsage(ctx context.Context, templateID string) error
}

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

package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

func writeInventory(t *testing.T, inv Inventory) (inventoryPath, stateDir string) {
	t.Helper()

	dir := t.TempDir()
	inventoryPath = filepath.Join(dir, "inventory.json")

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(inventoryPath, data, 0o600))

	return inventoryPath, filepath.Join(dir, "state")
}

func testInventory() Inventory {
	return Inventory{
		Devices: []*models.Device{
			{ID: "dev-1", Hostname: "edge-1", IP: "10.0.0.1", Vendor: "cisco-iosxe"},
			{ID: "dev-2", Hostname: "edge-2", IP: "10.0.0.2", Vendor: "nokia-sros"},
		},
		Groups: []*models.DeviceGroup{
			{ID: "edge", Name: "Edge routers", DeviceIDs: []string{"dev-1", "dev-2", "dev-gone"}},
		},
		Rules: []*models.AuditRule{
			{ID: "r-ntp", Name: "ntp", Category: "time", Enabled: true},
			{ID: "r-old", Name: "legacy", Enabled: false},
			{ID: "r-nokia", Name: "sros-only", Enabled: true, Vendors: []models.VendorTag{"nokia-sros"}},
		},
		Templates: []*models.ConfigTemplate{
			{ID: "tmpl-ntp", Name: "ntp-baseline", Vendor: "cisco-iosxe", Body: "ntp server {{server}}"},
		},
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	inventoryPath, stateDir := writeInventory(t, testInventory())

	s, err := New(inventoryPath, stateDir, logger.NewTestLogger())
	require.NoError(t, err)

	return s
}

func TestLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("device by id", func(t *testing.T) {
		device, err := s.GetDevice(ctx, "dev-1")
		require.NoError(t, err)
		assert.Equal(t, "edge-1", device.Hostname)

		_, err = s.GetDevice(ctx, "dev-gone")
		require.Error(t, err)
	})

	t.Run("devices fail on missing id", func(t *testing.T) {
		devices, err := s.GetDevices(ctx, []string{"dev-1", "dev-2"})
		require.NoError(t, err)
		assert.Len(t, devices, 2)

		_, err = s.GetDevices(ctx, []string{"dev-1", "dev-gone"})
		require.Error(t, err)
	})

	t.Run("group skips missing members", func(t *testing.T) {
		devices, err := s.GetGroupDevices(ctx, "edge")
		require.NoError(t, err)
		assert.Len(t, devices, 2)
	})

	t.Run("template by id", func(t *testing.T) {
		tmpl, err := s.GetTemplate(ctx, "tmpl-ntp")
		require.NoError(t, err)
		assert.Equal(t, "ntp-baseline", tmpl.Name)
	})
}

func TestGetRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	enabled := true

	t.Run("nil filter returns enabled rules", func(t *testing.T) {
		rules, err := s.GetRules(ctx, nil)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "r-ntp", rules[0].ID)
	})

	t.Run("id filter", func(t *testing.T) {
		rules, err := s.GetRules(ctx, &models.RuleFilter{IDs: []string{"r-ntp"}, Enabled: &enabled})
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "ntp", rules[0].Name)
	})

	t.Run("vendor filter uses rule applicability", func(t *testing.T) {
		rules, err := s.GetRules(ctx, &models.RuleFilter{Vendor: "cisco-iosxe", Enabled: &enabled})
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "r-ntp", rules[0].ID)
	})
}

func TestAuditResultRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.GetLatestAuditResult(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	result := &models.AuditResult{
		ID:         "res-1",
		DeviceID:   "dev-1",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Passed:     3,
		Failed:     1,
		Compliance: 75,
	}
	require.NoError(t, s.SaveAuditResult(ctx, result))

	latest, err = s.GetLatestAuditResult(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "res-1", latest.ID)
	assert.InDelta(t, 75.0, latest.Compliance, 0.01)

	newer := &models.AuditResult{ID: "res-2", DeviceID: "dev-1", Compliance: 100}
	require.NoError(t, s.SaveAuditResult(ctx, newer))

	latest, err = s.GetLatestAuditResult(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "res-2", latest.ID)
}

func TestDeviceStatusSurvivesRestart(t *testing.T) {
	inventoryPath, stateDir := writeInventory(t, testInventory())

	s, err := New(inventoryPath, stateDir, logger.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	due := now.Add(10 * time.Minute)

	device, err := s.GetDevice(ctx, "dev-1")
	require.NoError(t, err)

	device.Status = models.DeviceStatusUnreachable
	device.ConsecutiveFailures = 2
	device.LastCheckAttempt = &now
	device.NextCheckDue = &due
	device.ComplianceScore = 66.7
	require.NoError(t, s.UpdateDeviceStatus(ctx, device))

	reopened, err := New(inventoryPath, stateDir, logger.NewTestLogger())
	require.NoError(t, err)

	restored, err := reopened.GetDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusUnreachable, restored.Status)
	assert.Equal(t, 2, restored.ConsecutiveFailures)
	assert.InDelta(t, 66.7, restored.ComplianceScore, 0.01)
	require.NotNil(t, restored.NextCheckDue)
	assert.Equal(t, due, restored.NextCheckDue.UTC())
}

func TestTemplateUsageSurvivesRestart(t *testing.T) {
	inventoryPath, stateDir := writeInventory(t, testInventory())

	s, err := New(inventoryPath, stateDir, logger.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.IncrementTemplateUsage(ctx, "tmpl-ntp"))
	require.NoError(t, s.IncrementTemplateUsage(ctx, "tmpl-ntp"))
	require.Error(t, s.IncrementTemplateUsage(ctx, "tmpl-gone"))

	reopened, err := New(inventoryPath, stateDir, logger.NewTestLogger())
	require.NoError(t, err)

	tmpl, err := reopened.GetTemplate(ctx, "tmpl-ntp")
	require.NoError(t, err)
	assert.Equal(t, 2, tmpl.UsageCount)
}

func TestDeploymentAndBackupPersistence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	deployment := &models.TemplateDeployment{
		ID:         "dep-1",
		TemplateID: "tmpl-ntp",
		DeviceID:   "dev-1",
		Status:     models.DeploymentPending,
	}
	require.NoError(t, s.SaveDeployment(ctx, deployment))

	deployment.Status = models.DeploymentSuccess
	require.NoError(t, s.UpdateDeployment(ctx, deployment))

	var persisted models.TemplateDeployment

	data, err := os.ReadFile(filepath.Join(s.stateDir, dirDeployments, "dep-1.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, models.DeploymentSuccess, persisted.Status)

	backup := &models.ConfigBackup{
		ID:          "bak-1",
		DeviceID:    "dev-1",
		Config:      "hostname edge-1",
		Hash:        models.ContentHash("hostname edge-1"),
		TriggeredBy: "remediation",
	}
	require.NoError(t, s.SaveBackup(ctx, backup))

	_, err = os.Stat(filepath.Join(s.stateDir, dirBackups, "bak-1.json"))
	require.NoError(t, err)
}

func TestNewRejectsBadInventory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path, filepath.Join(dir, "state"), logger.NewTestLogger())
	require.Error(t, err)
}

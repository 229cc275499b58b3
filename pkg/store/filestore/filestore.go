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

// Package filestore is a file-backed store.Store for the CLI. The inventory
// (devices, groups, rules, templates) is read once from a JSON file;
// artifacts produced by the engines are written as individual JSON files
// under a state directory and survive restarts.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

const (
	dirResults     = "results"
	dirDeployments = "deployments"
	dirBackups     = "backups"
	dirDevices     = "devices"

	usageFile = "template_usage.json"

	filePerms = 0o600
	dirPerms  = 0o700
)

// Inventory is the on-disk shape of the inventory file.
type Inventory struct {
	Devices   []*models.Device         `json:"devices"`
	Groups    []*models.DeviceGroup    `json:"groups,omitempty"`
	Rules     []*models.AuditRule      `json:"rules,omitempty"`
	Templates []*models.ConfigTemplate `json:"templates,omitempty"`
}

// FileStore implements store.Store on top of a JSON inventory file and a
// state directory. Safe for concurrent use by the engines' worker pools.
type FileStore struct {
	mu       sync.RWMutex
	stateDir string

	devices   map[string]*models.Device
	groups    map[string]*models.DeviceGroup
	rules     []*models.AuditRule
	templates map[string]*models.ConfigTemplate
	usage     map[string]int

	log logger.Logger
}

// New loads the inventory file, creates the state directory layout and
// overlays any persisted device status from earlier runs.
func New(inventoryPath, stateDir string, log logger.Logger) (*FileStore, error) {
	data, err := os.ReadFile(inventoryPath)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", inventoryPath, err)
	}

	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", inventoryPath, err)
	}

	s := &FileStore{
		stateDir:  stateDir,
		devices:   make(map[string]*models.Device, len(inv.Devices)),
		groups:    make(map[string]*models.DeviceGroup, len(inv.Groups)),
		rules:     inv.Rules,
		templates: make(map[string]*models.ConfigTemplate, len(inv.Templates)),
		usage:     make(map[string]int),
		log:       log,
	}

	for _, d := range inv.Devices {
		s.devices[d.ID] = d
	}

	for _, g := range inv.Groups {
		s.groups[g.ID] = g
	}

	for _, t := range inv.Templates {
		s.templates[t.ID] = t
	}

	for _, dir := range []string{dirResults, dirDeployments, dirBackups, dirDevices} {
		if err := os.MkdirAll(filepath.Join(stateDir, dir), dirPerms); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
	}

	if err := s.loadState(); err != nil {
		return nil, err
	}

	return s, nil
}

// loadState overlays persisted device status and template usage on the
// inventory. Missing files are a fresh start, not an error.
func (s *FileStore) loadState() error {
	for id, device := range s.devices {
		var persisted models.Device

		ok, err := s.readJSON(filepath.Join(dirDevices, id+".json"), &persisted)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		device.Status = persisted.Status
		device.ComplianceScore = persisted.ComplianceScore
		device.ConsecutiveFailures = persisted.ConsecutiveFailures
		device.LastCheckAttempt = persisted.LastCheckAttempt
		device.NextCheckDue = persisted.NextCheckDue
	}

	if _, err := s.readJSON(usageFile, &s.usage); err != nil {
		return err
	}

	for id, count := range s.usage {
		if t, ok := s.templates[id]; ok {
			t.UsageCount = count
		}
	}

	return nil
}

func (s *FileStore) readJSON(rel string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.stateDir, rel))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("reading state file %s: %w", rel, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing state file %s: %w", rel, err)
	}

	return true, nil
}

func (s *FileStore) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file %s: %w", rel, err)
	}

	path := filepath.Join(s.stateDir, rel)

	if err := os.WriteFile(path, data, filePerms); err != nil {
		return fmt.Errorf("writing state file %s: %w", rel, err)
	}

	return nil
}

// GetDevice returns the device with the given ID.
func (s *FileStore) GetDevice(_ context.Context, deviceID string) (*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	device, ok := s.devices[deviceID]
	if !ok {
		return nil, fmt.Errorf("device %s not found", deviceID)
	}

	return device, nil
}

// GetDevices returns the devices for the given IDs. A missing ID fails the
// whole lookup.
func (s *FileStore) GetDevices(_ context.Context, deviceIDs []string) ([]*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]*models.Device, 0, len(deviceIDs))

	for _, id := range deviceIDs {
		device, ok := s.devices[id]
		if !ok {
			return nil, fmt.Errorf("device %s not found", id)
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// GetRules returns rules matching the filter in inventory order.
func (s *FileStore) GetRules(_ context.Context, filter *models.RuleFilter) ([]*models.AuditRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.AuditRule

	for _, rule := range s.rules {
		if ruleMatches(rule, filter) {
			matched = append(matched, rule)
		}
	}

	return matched, nil
}

func ruleMatches(rule *models.AuditRule, filter *models.RuleFilter) bool {
	if filter == nil {
		return rule.Enabled
	}

	if filter.Enabled != nil && rule.Enabled != *filter.Enabled {
		return false
	}

	if len(filter.IDs) > 0 && !contains(filter.IDs, rule.ID) {
		return false
	}

	if len(filter.Names) > 0 && !contains(filter.Names, rule.Name) {
		return false
	}

	if filter.Category != "" && rule.Category != filter.Category {
		return false
	}

	if filter.Vendor != "" && !rule.AppliesTo(filter.Vendor) {
		return false
	}

	return true
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}

	return false
}

// GetTemplate returns the template with the given ID.
func (s *FileStore) GetTemplate(_ context.Context, templateID string) (*models.ConfigTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("template %s not found", templateID)
	}

	return tmpl, nil
}

// GetGroupDevices resolves a group to its member devices. Members missing
// from the device inventory are skipped with a warning rather than failing
// the whole group.
func (s *FileStore) GetGroupDevices(_ context.Context, groupID string) ([]*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("device group %s not found", groupID)
	}

	devices := make([]*models.Device, 0, len(group.DeviceIDs))

	for _, id := range group.DeviceIDs {
		device, ok := s.devices[id]
		if !ok {
			s.log.Warn().Str("group_id", groupID).Str("device_id", id).
				Msg("Group member missing from inventory")
			continue
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// GetLatestAuditResult returns the most recent audit result for the device,
// or nil when the device has never been audited.
func (s *FileStore) GetLatestAuditResult(_ context.Context, deviceID string) (*models.AuditResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result models.AuditResult

	ok, err := s.readJSON(filepath.Join(dirResults, deviceID+".json"), &result)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return &result, nil
}

// SaveAuditResult persists the result as the device's latest.
func (s *FileStore) SaveAuditResult(_ context.Context, result *models.AuditResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(filepath.Join(dirResults, result.DeviceID+".json"), result)
}

// SaveDeployment persists a new deployment record.
func (s *FileStore) SaveDeployment(_ context.Context, deployment *models.TemplateDeployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(filepath.Join(dirDeployments, deployment.ID+".json"), deployment)
}

// UpdateDeployment overwrites the persisted deployment record.
func (s *FileStore) UpdateDeployment(ctx context.Context, deployment *models.TemplateDeployment) error {
	return s.SaveDeployment(ctx, deployment)
}

// SaveBackup persists a pre-change configuration snapshot.
func (s *FileStore) SaveBackup(_ context.Context, backup *models.ConfigBackup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(filepath.Join(dirBackups, backup.ID+".json"), backup)
}

// UpdateDeviceStatus persists the mutable status fields of the device.
func (s *FileStore) UpdateDeviceStatus(_ context.Context, device *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[device.ID]; !ok {
		return fmt.Errorf("device %s not found", device.ID)
	}

	s.devices[device.ID] = device

	return s.writeJSON(filepath.Join(dirDevices, device.ID+".json"), device)
}

// IncrementTemplateUsage bumps the usage counter and persists the tally.
func (s *FileStore) IncrementTemplateUsage(_ context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, ok := s.templates[templateID]
	if !ok {
		return fmt.Errorf("template %s not found", templateID)
	}

	tmpl.UsageCount++
	s.usage[templateID] = tmpl.UsageCount

	return s.writeJSON(usageFile, s.usage)
}

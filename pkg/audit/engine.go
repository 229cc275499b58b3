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

// Package audit evaluates compliance rules against device state and scores
// the results. Rules and devices come from the external store; findings and
// backoff updates go back to it.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/carverauto/netaudit/pkg/compare"
	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

const defaultConcurrency = 5

// Engine runs device audits.
type Engine struct {
	store    store.Store
	registry connector.Registry
	cfg      models.AuditConfig
	connCfg  *models.ConnectorConfig
	limiter  *rate.Limiter
	log      logger.Logger
	now      func() time.Time
}

// NewEngine creates an audit engine.
func NewEngine(st store.Store, registry connector.Registry, cfg *models.CoreConfig, log logger.Logger) *Engine {
	e := &Engine{
		store:    st,
		registry: registry,
		cfg:      cfg.Audit,
		connCfg:  &cfg.Connector,
		log:      log.WithComponent("audit"),
		now:      time.Now,
	}

	if cfg.Audit.ConnectRate > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.Audit.ConnectRate), 1)
	}

	return e
}

// Audit evaluates the selected rules against each device. An empty ruleIDs
// slice means all enabled rules. Every supplied device yields exactly one
// result entry; per-device failures are reported in the entry, never
// dropped.
func (e *Engine) Audit(ctx context.Context, deviceIDs, ruleIDs []string) ([]*models.AuditResult, error) {
	enabled := true
	filter := &models.RuleFilter{Enabled: &enabled}

	if len(ruleIDs) > 0 {
		filter.IDs = ruleIDs
	}

	rules, err := e.store.GetRules(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	results := make([]*models.AuditResult, len(deviceIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())

	for i, deviceID := range deviceIDs {
		g.Go(func() error {
			// Devices resolve individually so one unknown ID cannot erase
			// the results of the rest of the batch.
			device, err := e.store.GetDevice(gctx, deviceID)
			if err != nil {
				e.log.Warn().Err(err).Str("device_id", deviceID).Msg("Device lookup failed")
				results[i] = e.unresolvedResult(deviceID, err)

				return nil
			}

			if e.limiter != nil {
				if err := e.limiter.Wait(gctx); err != nil {
					// No connection was attempted, so backoff state stays
					// untouched.
					results[i] = e.abortedResult(gctx, device, err)

					return nil
				}
			}

			dctx := gctx

			if d := time.Duration(e.cfg.DeviceTimeout); d > 0 {
				var cancel context.CancelFunc

				dctx, cancel = context.WithTimeout(gctx, d)
				defer cancel()
			}

			results[i] = e.auditDevice(dctx, device, rules)

			return nil
		})
	}

	_ = g.Wait()

	return results, nil
}

// unresolvedResult records a device ID the store could not resolve. There
// is no device to persist against, so the entry only exists in the batch.
func (e *Engine) unresolvedResult(deviceID string, err error) *models.AuditResult {
	result := &models.AuditResult{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		Timestamp: e.now(),
		Message:   fmt.Sprintf("failed to load device: %v", err),
	}
	result.ComputeCompliance()

	return result
}

// abortedResult records a run stopped before any connectivity attempt.
func (e *Engine) abortedResult(ctx context.Context, device *models.Device, err error) *models.AuditResult {
	result := &models.AuditResult{
		ID:        uuid.New().String(),
		DeviceID:  device.ID,
		Timestamp: e.now(),
		Message:   fmt.Sprintf("audit aborted: %v", err),
	}
	result.ComputeCompliance()

	if saveErr := e.store.SaveAuditResult(context.WithoutCancel(ctx), result); saveErr != nil {
		e.log.Error().Err(saveErr).Str("device_id", device.ID).Msg("Failed to save audit result")
	}

	return result
}

func (e *Engine) concurrency() int {
	if e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}

	return defaultConcurrency
}

// auditDevice runs one device through connect, evaluate, disconnect. A
// connect failure short-circuits with zero findings: an audit either ran
// against a live session or did not run at all.
func (e *Engine) auditDevice(ctx context.Context, device *models.Device, rules []*models.AuditRule) *models.AuditResult {
	result := &models.AuditResult{
		ID:        uuid.New().String(),
		DeviceID:  device.ID,
		Timestamp: e.now(),
	}

	applicable := applicableRules(rules, device.Vendor)
	if len(applicable) == 0 {
		// No connectivity attempt happened, so backoff state is left alone.
		result.Message = "no applicable rules"
		result.ComputeCompliance()

		if err := e.store.SaveAuditResult(context.WithoutCancel(ctx), result); err != nil {
			e.log.Error().Err(err).Str("device_id", device.ID).Msg("Failed to save audit result")
		}

		return result
	}

	e.log.Debug().Str("device_id", device.ID).Int("rules", len(applicable)).Msg("Connecting")

	conn, err := e.registry.Get(device, e.connCfg, e.log)
	if err != nil {
		return e.failedResultInto(ctx, device, result, err)
	}

	if err := conn.Connect(ctx); err != nil {
		return e.failedResultInto(ctx, device, result, err)
	}

	defer conn.Disconnect()

	e.log.Debug().Str("device_id", device.ID).Msg("Evaluating")

	for _, rule := range applicable {
		for i := range rule.Checks {
			if ctx.Err() != nil {
				result.Message = fmt.Sprintf("audit aborted: %v", ctx.Err())
				result.ComputeCompliance()
				e.persist(ctx, device, result, false, false)

				return result
			}

			result.Findings = append(result.Findings, e.evaluateCheck(ctx, conn, rule, i))
		}
	}

	result.ComputeCompliance()
	e.persist(ctx, device, result, true, true)

	e.log.Info().
		Str("device_id", device.ID).
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("errors", result.Errors).
		Float64("compliance", result.Compliance).
		Msg("Audit completed")

	return result
}

// evaluateCheck resolves one check's locator and compares the value.
// Retrieval and comparison problems localize to this finding as error
// status; other checks keep running.
func (e *Engine) evaluateCheck(ctx context.Context, conn connector.Connector, rule *models.AuditRule, idx int) models.AuditFinding {
	check := rule.Checks[idx]

	finding := models.AuditFinding{
		RuleName:       rule.Name,
		CheckIndex:     idx,
		Expected:       check.Expected,
		Severity:       rule.CheckSeverity(idx),
		ExpectedConfig: check.ExpectedConfig,
		Locator:        check.Locator,
	}

	if check.Operator == models.OpExists || check.Operator == models.OpNotExists {
		_, err := conn.GetState(ctx, check.Locator)

		var retrievalErr *connector.RetrievalError

		if err != nil && !errors.As(err, &retrievalErr) {
			finding.Status = models.FindingError
			finding.Error = err.Error()

			return finding
		}

		finding.Status = findingStatus(compare.EvaluateExistence(check.Operator, err == nil))

		return finding
	}

	actual, err := e.retrieve(ctx, conn, check.Locator)
	if err != nil {
		finding.Status = models.FindingError
		finding.Error = err.Error()

		return finding
	}

	finding.Actual = actual

	outcome, err := compare.Evaluate(check.Operator, actual, check.Expected)
	if err != nil {
		finding.Status = models.FindingError
		finding.Error = err.Error()

		return finding
	}

	finding.Status = findingStatus(outcome)

	return finding
}

// retrieve resolves a locator to text. An empty locator means the full
// running configuration.
func (e *Engine) retrieve(ctx context.Context, conn connector.Connector, locator string) (string, error) {
	if locator == "" {
		return conn.GetConfig(ctx)
	}

	value, err := conn.GetState(ctx, locator)
	if err != nil {
		return "", err
	}

	return stringifyState(value), nil
}

// stringifyState flattens a normalized state value to text for the
// comparators. Maps and slices render as JSON so semantic-diff checks can
// re-parse them.
func stringifyState(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}

		return fmt.Sprint(v)
	}
}

func findingStatus(o compare.Outcome) models.FindingStatus {
	if o == compare.OutcomePass {
		return models.FindingPass
	}

	return models.FindingFail
}

func applicableRules(rules []*models.AuditRule, vendor models.VendorTag) []*models.AuditRule {
	out := make([]*models.AuditRule, 0, len(rules))

	for _, r := range rules {
		if r.Enabled && r.AppliesTo(vendor) {
			out = append(out, r)
		}
	}

	return out
}

func (e *Engine) failedResultInto(ctx context.Context, device *models.Device, result *models.AuditResult, err error) *models.AuditResult {
	e.log.Warn().Err(err).Str("device_id", device.ID).Msg("Audit failed before evaluation")

	result.Message = err.Error()
	result.ComputeCompliance()
	e.persist(ctx, device, result, false, false)

	return result
}

// persist saves the result and the device's refreshed backoff state. The
// session context may already be expired here, so persistence runs detached
// from its cancellation.
func (e *Engine) persist(ctx context.Context, device *models.Device, result *models.AuditResult, connected, scored bool) {
	pctx := context.WithoutCancel(ctx)

	if err := e.store.SaveAuditResult(pctx, result); err != nil {
		e.log.Error().Err(err).Str("device_id", device.ID).Msg("Failed to save audit result")
	}

	ApplyCheckOutcome(device, connected, e.now())

	if scored {
		device.ComplianceScore = result.Compliance
	}

	if err := e.store.UpdateDeviceStatus(pctx, device); err != nil {
		e.log.Error().Err(err).Str("device_id", device.ID).Msg("Failed to update device status")
	}
}

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

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/carverauto/netaudit/pkg/models"
)

// HealthChecker probes a device's management plane reachability.
type HealthChecker interface {
	Check(ctx context.Context, device *models.Device) error
}

// checkReport is the per-device outcome of a health check run.
type checkReport struct {
	DeviceID            string              `json:"device_id"`
	Status              models.DeviceStatus `json:"status"`
	ConsecutiveFailures int                 `json:"consecutive_failures"`
	NextCheckDue        *string             `json:"next_check_due,omitempty"`
	Error               string              `json:"error,omitempty"`
}

type checkCmd struct {
	deps *Deps

	devices []string
}

func newCheckCmd(deps *Deps) *cobra.Command {
	cc := &checkCmd{deps: deps}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe device reachability over SNMP and update backoff state",
		RunE:  cc.run,
	}

	cmd.Flags().StringSliceVar(&cc.devices, "devices", nil, "Device IDs to probe")
	_ = cmd.MarkFlagRequired("devices")

	return cmd
}

func (cc *checkCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	devices, err := cc.deps.Store.GetDevices(ctx, cc.devices)
	if err != nil {
		return err
	}

	reports := make([]checkReport, 0, len(devices))

	for _, device := range devices {
		report := checkReport{DeviceID: device.ID}

		if err := cc.deps.Checker.Check(ctx, device); err != nil {
			report.Error = err.Error()
		}

		report.Status = device.Status
		report.ConsecutiveFailures = device.ConsecutiveFailures

		if device.NextCheckDue != nil {
			due := device.NextCheckDue.Format(time.RFC3339)
			report.NextCheckDue = &due
		}

		reports = append(reports, report)
	}

	return writeJSON(cc.deps.Output, reports)
}

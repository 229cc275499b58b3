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
	"github.com/spf13/cobra"
)

type remediateCmd struct {
	deps *Deps

	devices []string
	dryRun  bool
	reAudit bool
}

func newRemediateCmd(deps *Deps) *cobra.Command {
	rc := &remediateCmd{deps: deps}

	cmd := &cobra.Command{
		Use:   "remediate",
		Short: "Apply corrective configuration from the latest audit findings",
		RunE:  rc.run,
	}

	cmd.Flags().StringSliceVar(&rc.devices, "devices", nil, "Device IDs to remediate")
	cmd.Flags().BoolVar(&rc.dryRun, "dry-run", false, "Validate corrective commands without applying them")
	cmd.Flags().BoolVar(&rc.reAudit, "re-audit", false, "Request a fresh audit after successful remediation")
	_ = cmd.MarkFlagRequired("devices")

	return cmd
}

func (rc *remediateCmd) run(cmd *cobra.Command, _ []string) error {
	summary := rc.deps.Remediator.Remediate(cmd.Context(), rc.devices, rc.dryRun, rc.reAudit)

	return writeJSON(rc.deps.Output, summary)
}

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

type auditCmd struct {
	deps *Deps

	devices []string
	rules   []string
}

func newAuditCmd(deps *Deps) *cobra.Command {
	ac := &auditCmd{deps: deps}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit devices against compliance rules",
		RunE:  ac.run,
	}

	cmd.Flags().StringSliceVar(&ac.devices, "devices", nil, "Device IDs to audit")
	cmd.Flags().StringSliceVar(&ac.rules, "rules", nil, "Rule IDs to evaluate (default all enabled rules)")
	_ = cmd.MarkFlagRequired("devices")

	return cmd
}

func (ac *auditCmd) run(cmd *cobra.Command, _ []string) error {
	results, err := ac.deps.Auditor.Audit(cmd.Context(), ac.devices, ac.rules)
	if err != nil {
		return err
	}

	return writeJSON(ac.deps.Output, results)
}

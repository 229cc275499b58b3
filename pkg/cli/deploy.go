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
	"errors"

	"github.com/spf13/cobra"
)

var errDeployTarget = errors.New("exactly one of --devices or --groups must be set")

type deployCmd struct {
	deps *Deps

	template string
	devices  []string
	groups   []string
	vars     []string
	dryRun   bool
}

func newDeployCmd(deps *Deps) *cobra.Command {
	dc := &deployCmd{deps: deps}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Render a configuration template and push it to devices or groups",
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.template, "template", "", "Template ID to deploy")
	cmd.Flags().StringSliceVar(&dc.devices, "devices", nil, "Device IDs to deploy to")
	cmd.Flags().StringSliceVar(&dc.groups, "groups", nil, "Device group IDs to deploy to")
	cmd.Flags().StringArrayVar(&dc.vars, "var", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&dc.dryRun, "dry-run", false, "Render and validate without touching devices")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func (dc *deployCmd) run(cmd *cobra.Command, _ []string) error {
	if (len(dc.devices) == 0) == (len(dc.groups) == 0) {
		return errDeployTarget
	}

	vars, err := parseVars(dc.vars)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if len(dc.groups) > 0 {
		summary, err := dc.deps.Deployer.DeployGroups(ctx, dc.template, dc.groups, vars, dc.dryRun)
		if err != nil {
			return err
		}

		return writeJSON(dc.deps.Output, summary)
	}

	summary := dc.deps.Deployer.DeployBulk(ctx, dc.template, dc.devices, vars, dc.dryRun)

	return writeJSON(dc.deps.Output, summary)
}

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

// Package cli exposes the audit, remediate, deploy and render operations
// as a cobra command tree. Engines and the store are injected by main.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

// Auditor runs compliance audits against devices.
type Auditor interface {
	Audit(ctx context.Context, deviceIDs, ruleIDs []string) ([]*models.AuditResult, error)
}

// Remediator runs remediation batches.
type Remediator interface {
	Remediate(ctx context.Context, deviceIDs []string, dryRun, reAudit bool) *models.RemediationSummary
}

// Deployer pushes rendered templates to devices and groups.
type Deployer interface {
	DeployBulk(ctx context.Context, templateID string, deviceIDs []string, variables map[string]string, dryRun bool) *models.DeploymentSummary
	DeployGroups(ctx context.Context, templateID string, groupIDs []string, variables map[string]string, dryRun bool) (*models.DeploymentSummary, error)
}

// Deps are the collaborators the command tree needs.
type Deps struct {
	Auditor    Auditor
	Remediator Remediator
	Deployer   Deployer
	Checker    HealthChecker
	Store      store.Store
	Output     io.Writer
}

// CLI is the assembled netaudit command tree.
type CLI struct {
	deps    Deps
	rootCmd *cobra.Command
}

// New builds the command tree around the injected dependencies.
func New(deps Deps) *CLI {
	if deps.Output == nil {
		deps.Output = os.Stdout
	}

	c := &CLI{deps: deps}

	root := &cobra.Command{
		Use:           "netaudit",
		Short:         "Audit, remediate and provision network devices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAuditCmd(&c.deps))
	root.AddCommand(newRemediateCmd(&c.deps))
	root.AddCommand(newDeployCmd(&c.deps))
	root.AddCommand(newRenderCmd(&c.deps))
	root.AddCommand(newCheckCmd(&c.deps))

	c.rootCmd = root

	return c
}

// Execute runs the command tree under the given context.
func (c *CLI) Execute(ctx context.Context) error {
	return c.rootCmd.ExecuteContext(ctx)
}

// Root exposes the underlying command for embedding and tests.
func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// parseVars turns repeated key=value flags into a variable map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}

		vars[key] = value
	}

	return vars, nil
}

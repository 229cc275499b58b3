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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carverauto/netaudit/pkg/deploy"
)

type renderCmd struct {
	deps *Deps

	template string
	vars     []string
}

func newRenderCmd(deps *Deps) *cobra.Command {
	rc := &renderCmd{deps: deps}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template offline without contacting any device",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.template, "template", "", "Template ID to render")
	cmd.Flags().StringArrayVar(&rc.vars, "var", nil, "Template variable as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func (rc *renderCmd) run(cmd *cobra.Command, _ []string) error {
	vars, err := parseVars(rc.vars)
	if err != nil {
		return err
	}

	tmpl, err := rc.deps.Store.GetTemplate(cmd.Context(), rc.template)
	if err != nil {
		return fmt.Errorf("loading template %s: %w", rc.template, err)
	}

	rendered, err := deploy.RenderTemplate(tmpl, vars)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(rc.deps.Output, rendered)

	return err
}

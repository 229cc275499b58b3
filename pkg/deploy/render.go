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

package deploy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carverauto/netaudit/pkg/models"
)

// TemplateRenderError reports a template that cannot be rendered: a missing
// required variable or an unresolvable placeholder. It always fires before
// any network I/O.
type TemplateRenderError struct {
	Template string
	Variable string
	Reason   string
}

func (e *TemplateRenderError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("template %q: variable %q: %s", e.Template, e.Variable, e.Reason)
	}

	return fmt.Sprintf("template %q: %s", e.Template, e.Reason)
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// ValidateVariables checks that every required variable resolves to a
// non-empty value before rendering is attempted, so the error names the
// missing variable instead of surfacing a generic render failure.
func ValidateVariables(tmpl *models.ConfigTemplate, provided map[string]string) error {
	for _, v := range tmpl.Variables {
		if !v.Required {
			continue
		}

		if value, ok := provided[v.Name]; ok && value != "" {
			continue
		}

		if v.Default != "" {
			continue
		}

		return &TemplateRenderError{
			Template: tmpl.Name,
			Variable: v.Name,
			Reason:   "required variable missing",
		}
	}

	return nil
}

// resolveVariables overlays provided values on declared defaults.
func resolveVariables(tmpl *models.ConfigTemplate, provided map[string]string) map[string]string {
	resolved := make(map[string]string, len(tmpl.Variables)+len(provided))

	for _, v := range tmpl.Variables {
		if v.Default != "" {
			resolved[v.Name] = v.Default
		}
	}

	for name, value := range provided {
		resolved[name] = value
	}

	return resolved
}

// RenderTemplate validates the provided variables against the template's
// declarations and renders the body with defaults applied. Used for
// offline previews; the deployment pipeline calls the individual steps so
// failures land on the right deployment field.
func RenderTemplate(tmpl *models.ConfigTemplate, provided map[string]string) (string, error) {
	if err := ValidateVariables(tmpl, provided); err != nil {
		return "", err
	}

	return Render(tmpl.Name, tmpl.Body, resolveVariables(tmpl, provided))
}

// Render substitutes {{variable}} placeholders in the body. A placeholder
// with no resolved value is a *TemplateRenderError, never a silent
// empty-string substitution.
func Render(templateName, body string, vars map[string]string) (string, error) {
	var missing string

	rendered := placeholderRe.ReplaceAllStringFunc(body, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))

		if value, ok := vars[name]; ok {
			return value
		}

		if missing == "" {
			missing = name
		}

		return match
	})

	if missing != "" {
		return "", &TemplateRenderError{
			Template: templateName,
			Variable: missing,
			Reason:   "no value for placeholder",
		}
	}

	return rendered, nil
}

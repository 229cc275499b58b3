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

package remediate

import (
	"encoding/json"
	"strings"
)

// decodeStructured interprets a corrective-config payload as a structured
// JSON object for model-driven apply paths. Non-JSON payloads return
// (nil, false, nil) so they flow through as raw text. Trailing-comma
// malformation, common in hand-authored rule content, is repaired before
// giving up; repaired reports whether the fix fired.
func decodeStructured(payload string) (structured map[string]any, repaired bool, err error) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false, nil
	}

	if err = json.Unmarshal([]byte(trimmed), &structured); err == nil {
		return structured, false, nil
	}

	fixed := stripTrailingCommas(trimmed)
	if fixed == trimmed {
		return nil, false, err
	}

	if err = json.Unmarshal([]byte(fixed), &structured); err != nil {
		return nil, false, err
	}

	return structured, true, nil
}

// stripTrailingCommas removes commas that directly precede a closing brace
// or bracket, outside of string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)

			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true

			b.WriteByte(c)
		case ',':
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}

			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}

			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

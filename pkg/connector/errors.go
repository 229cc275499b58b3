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

package connector

import "fmt"

// ConnectionError reports a transport or authentication failure reaching a
// device. The engine does not retry; backoff policy lives with the external
// scheduler.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RetrievalError reports a locator that could not be resolved on the device.
// It localizes to a single check; evaluation of other checks continues.
type RetrievalError struct {
	Locator string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("locator %q could not be resolved: %v", e.Locator, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ConfigApplyError reports a configuration change the device rejected.
// Reason carries the vendor's rejection text verbatim.
type ConfigApplyError struct {
	Reason string
	Err    error
}

func (e *ConfigApplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config apply rejected: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("config apply rejected: %s", e.Reason)
}

func (e *ConfigApplyError) Unwrap() error { return e.Err }

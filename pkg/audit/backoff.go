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

package audit

import (
	"time"

	"github.com/carverauto/netaudit/pkg/models"
)

// checkBackoffLadder maps the consecutive-failure count at attempt time to
// the delay before the next check. The last rung is the cap.
var checkBackoffLadder = []time.Duration{
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
}

// NextCheckDelay returns the scheduling delay for a device that has failed
// consecutiveFailures times before the current attempt.
func NextCheckDelay(consecutiveFailures int) time.Duration {
	if consecutiveFailures < 0 {
		consecutiveFailures = 0
	}

	if consecutiveFailures >= len(checkBackoffLadder) {
		return checkBackoffLadder[len(checkBackoffLadder)-1]
	}

	return checkBackoffLadder[consecutiveFailures]
}

// ApplyCheckOutcome mutates the device's backoff fields after one
// connectivity attempt. Success resets the failure count and clears the
// next-due time; failure grows the delay along the ladder. The device row
// is assumed single-writer; persistence is the caller's job.
func ApplyCheckOutcome(device *models.Device, success bool, now time.Time) {
	device.LastCheckAttempt = &now

	if success {
		device.ConsecutiveFailures = 0
		device.NextCheckDue = nil
		device.Status = models.DeviceStatusOnline

		return
	}

	due := now.Add(NextCheckDelay(device.ConsecutiveFailures))
	device.ConsecutiveFailures++
	device.NextCheckDue = &due
	device.Status = models.DeviceStatusUnreachable
}

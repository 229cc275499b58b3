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

//go:generate mockgen -destination=mock_connector.go -package=connector github.com/carverauto/netaudit/pkg/connector Connector,Registry

package connector

import (
	"context"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

// Connector is the four-operation session contract every vendor dialect
// implements. A Connector owns exactly one device session and is not safe
// for concurrent use.
type Connector interface {
	// Connect establishes the management session. It never partially
	// succeeds: on any failure the connector is left disconnected and a
	// *ConnectionError is returned.
	Connect(ctx context.Context) error

	// Disconnect releases the session. Idempotent and best-effort; it
	// runs in cleanup paths where an operation may already be failing,
	// so failures are logged, never propagated.
	Disconnect()

	// GetConfig retrieves the full running configuration as vendor-native
	// text or XML.
	GetConfig(ctx context.Context) (string, error)

	// GetState retrieves the state subtree addressed by the locator,
	// normalized to plain maps/slices/strings. Vendor SDK shapes never
	// cross this boundary. An unresolvable locator yields *RetrievalError.
	GetState(ctx context.Context, locator string) (any, error)

	// EditConfig applies configuration. A rejected change yields
	// *ConfigApplyError carrying the device's reason verbatim.
	EditConfig(ctx context.Context, req *EditRequest) error
}

// EditRequest describes one configuration change.
type EditRequest struct {
	// Payload is raw vendor-native text or XML. Ignored when Structured
	// is set.
	Payload string

	// Structured is a locator-addressed nested mapping used by
	// model-driven vendors.
	Structured map[string]any

	// Target datastore: "running" or "candidate". Empty means running.
	Target string

	// Validate requests a candidate-validate-commit cycle where the
	// device supports one.
	Validate bool

	// Locator addresses the apply point for structured payloads.
	Locator string
}

// ConnectorCreator builds a connector for a device.
type ConnectorCreator func(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error)

// Registry stores and retrieves connector factories keyed by vendor family.
type Registry interface {
	Register(family string, creator ConnectorCreator)
	Get(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error)
}

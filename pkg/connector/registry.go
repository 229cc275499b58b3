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

import (
	"fmt"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

var (
	errNoConnector   = fmt.Errorf("no connector registered for vendor family")
	errUnknownVendor = fmt.Errorf("unknown vendor tag")
)

// connectorRegistry is a simple in-memory implementation of Registry.
type connectorRegistry struct {
	factories map[string]ConnectorCreator
}

// NewRegistry creates an empty connector registry.
func NewRegistry() Registry {
	return &connectorRegistry{
		factories: make(map[string]ConnectorCreator),
	}
}

// DefaultRegistry returns a registry with all supported vendor families.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(models.FamilyCisco, NewNetconfConnector)
	r.Register(models.FamilyNokia, NewModelDrivenConnector)
	r.Register(models.FamilyGeneric, NewCLIConnector)

	return r
}

// Register adds a connector creator for a vendor family.
func (r *connectorRegistry) Register(family string, creator ConnectorCreator) {
	r.factories[family] = creator
}

// Get builds a connector for the device, dispatching on the vendor family.
func (r *connectorRegistry) Get(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error) {
	if !device.Vendor.Valid() {
		return nil, fmt.Errorf("%w: %q", errUnknownVendor, device.Vendor)
	}

	creator, ok := r.factories[device.Vendor.Family()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errNoConnector, device.Vendor.Family())
	}

	return creator(device, cfg, log)
}

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
	"context"
	"fmt"
	"strings"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

var errLocatorNotFound = fmt.Errorf("no data matched the filter")

// netconfConnector speaks classic NETCONF with subtree filters, the
// generic/Cisco-style dialect. Locators are subtree filter XML fragments or
// XPath expressions.
type netconfConnector struct {
	device  *models.Device
	session *netconfSession
	log     logger.Logger
}

// NewNetconfConnector builds the subtree-filter NETCONF connector.
func NewNetconfConnector(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error) {
	timeouts := resolveTimeouts(cfg)

	sshCfg, err := buildSSHConfig(device, timeouts.connect)
	if err != nil {
		return nil, err
	}

	return &netconfConnector{
		device: device,
		log:    log,
		session: &netconfSession{
			addr:      deviceAddress(device, defaultNetconfPort),
			sshConfig: sshCfg,
			timeouts:  timeouts,
			log:       log,
		},
	}, nil
}

func (c *netconfConnector) Connect(ctx context.Context) error {
	return c.session.connect(ctx)
}

func (c *netconfConnector) Disconnect() {
	c.session.close()
	c.log.Debug().Str("device_id", c.device.ID).Msg("netconf session closed")
}

func (c *netconfConnector) GetConfig(ctx context.Context) (string, error) {
	reply, err := c.session.getConfig(ctx, "", "")
	if err != nil {
		return "", fmt.Errorf("get-config failed: %w", err)
	}

	inner, ok := extractData(reply)
	if !ok {
		return "", fmt.Errorf("get-config reply carried no data element")
	}

	return inner, nil
}

func (c *netconfConnector) GetState(ctx context.Context, locator string) (any, error) {
	filterType := "xpath"
	if strings.HasPrefix(strings.TrimSpace(locator), "<") {
		filterType = "subtree"
	}

	reply, err := c.session.get(ctx, filterType, locator)
	if err != nil {
		return nil, &RetrievalError{Locator: locator, Err: err}
	}

	inner, ok := extractData(reply)
	if !ok || inner == "" {
		return nil, &RetrievalError{Locator: locator, Err: errLocatorNotFound}
	}

	value, err := parseXMLSubtree(inner)
	if err != nil {
		return nil, &RetrievalError{Locator: locator, Err: err}
	}

	return value, nil
}

func (c *netconfConnector) EditConfig(ctx context.Context, req *EditRequest) error {
	content := req.Payload

	if req.Structured != nil {
		inner := structuredToXML(req.Structured)

		if req.Locator != "" {
			wrapped, err := wrapXPath(req.Locator, inner)
			if err != nil {
				return &ConfigApplyError{Reason: err.Error(), Err: err}
			}

			inner = wrapped
		}

		content = inner
	}

	if strings.TrimSpace(content) == "" {
		return &ConfigApplyError{Reason: "empty config payload"}
	}

	return c.session.editConfig(ctx, content, req.Validate)
}

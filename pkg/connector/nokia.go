package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

// modelDrivenConnector speaks the model-driven Nokia-style dialect: every
// locator is an XPath into the YANG tree and structured payloads are nested
// mappings applied at that path. The transport is the same NETCONF
// subsystem; the difference is entirely in addressing and payload shape.
type modelDrivenConnector struct {
	device  *models.Device
	session *netconfSession
	log     logger.Logger
}

// NewModelDrivenConnector builds the XPath/JSON model-driven connector.
func NewModelDrivenConnector(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error) {
	timeouts := resolveTimeouts(cfg)

	sshCfg, err := buildSSHConfig(device, timeouts.connect)
	if err != nil {
		return nil, err
	}

	return &modelDrivenConnector{
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

func (c *modelDrivenConnector) Connect(ctx context.Context) error {
	return c.session.connect(ctx)
}

func (c *modelDrivenConnector) Disconnect() {
	c.session.close()
	c.log.Debug().Str("device_id", c.device.ID).Msg("model-driven session closed")
}

func (c *modelDrivenConnector) GetConfig(ctx context.Context) (string, error) {
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

// GetState resolves an XPath locator and returns the subtree as plain
// nested maps. The device's YANG-shaped reply never leaks past here.
func (c *modelDrivenConnector) GetState(ctx context.Context, locator string) (any, error) {
	reply, err := c.session.get(ctx, "xpath", locator)
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

// EditConfig applies a structured mapping at the request's XPath locator.
// A string payload that looks like JSON is decoded into the structured
// form first.
func (c *modelDrivenConnector) EditConfig(ctx context.Context, req *EditRequest) error {
	structured := req.Structured

	if structured == nil {
		trimmed := strings.TrimSpace(req.Payload)
		if strings.HasPrefix(trimmed, "{") {
			if err := json.Unmarshal([]byte(trimmed), &structured); err != nil {
				return &ConfigApplyError{Reason: "payload is not valid JSON", Err: err}
			}
		}
	}

	var content string

	if structured != nil {
		content = structuredToXML(structured)

		if req.Locator != "" {
			wrapped, err := wrapXPath(req.Locator, content)
			if err != nil {
				return &ConfigApplyError{Reason: err.Error(), Err: err}
			}

			content = wrapped
		}
	} else {
		content = req.Payload
	}

	if strings.TrimSpace(content) == "" {
		return &ConfigApplyError{Reason: "empty config payload"}
	}

	return c.session.editConfig(ctx, content, req.Validate)
}

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

// Package health probes device reachability over SNMP. The probe is a
// lightweight connectivity attempt: it feeds the same backoff fields audits
// do, letting the external scheduler skip full audits of devices that are
// clearly down.
package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/netaudit/pkg/audit"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

const (
	oidSysUptime = ".1.3.6.1.2.1.1.3.0"

	defaultSNMPPort    = 161
	defaultSNMPTimeout = 5 * time.Second
	defaultSNMPRetries = 1

	// Device metadata keys for SNMP access.
	metaSNMPVersion   = "snmp_version"
	metaSNMPCommunity = "snmp_community"
	metaSNMPUsername  = "snmp_username"
	metaSNMPAuthProto = "snmp_auth_protocol"
	metaSNMPAuthPass  = "snmp_auth_password"
	metaSNMPPrivProto = "snmp_priv_protocol"
	metaSNMPPrivPass  = "snmp_priv_password"
)

var (
	ErrUnsupportedSNMPVersion = errors.New("unsupported SNMP version")
	errNoSNMPAccess           = errors.New("device metadata has no SNMP access configured")
)

// SNMPChecker probes devices with an SNMP sysUpTime get and persists the
// resulting backoff state.
type SNMPChecker struct {
	store   store.Store
	timeout time.Duration
	retries int
	log     logger.Logger
	now     func() time.Time

	// probe is swappable for tests; the default dials the device.
	probe func(ctx context.Context, device *models.Device) error
}

// NewSNMPChecker creates a reachability checker.
func NewSNMPChecker(st store.Store, log logger.Logger) *SNMPChecker {
	c := &SNMPChecker{
		store:   st,
		timeout: defaultSNMPTimeout,
		retries: defaultSNMPRetries,
		log:     log.WithComponent("health"),
		now:     time.Now,
	}

	c.probe = c.snmpProbe

	return c
}

// Check probes one device and updates its backoff fields through the
// store. The returned error reports the probe outcome; the store update is
// best-effort and logged on failure.
func (c *SNMPChecker) Check(ctx context.Context, device *models.Device) error {
	err := c.probe(ctx, device)

	audit.ApplyCheckOutcome(device, err == nil, c.now())

	if updateErr := c.store.UpdateDeviceStatus(context.WithoutCancel(ctx), device); updateErr != nil {
		c.log.Error().Err(updateErr).Str("device_id", device.ID).Msg("Failed to update device status")
	}

	if err != nil {
		c.log.Warn().Err(err).Str("device_id", device.ID).Msg("Health check failed")
		return fmt.Errorf("health check for %s failed: %w", device.ID, err)
	}

	c.log.Debug().Str("device_id", device.ID).Msg("Health check passed")

	return nil
}

func (c *SNMPChecker) snmpProbe(ctx context.Context, device *models.Device) error {
	client, err := c.buildClient(device)
	if err != nil {
		return err
	}

	client.Context = ctx

	if err := client.Connect(); err != nil {
		return fmt.Errorf("snmp connect failed: %w", err)
	}

	defer func() {
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
	}()

	result, err := client.Get([]string{oidSysUptime})
	if err != nil {
		return fmt.Errorf("snmp get failed: %w", err)
	}

	if len(result.Variables) == 0 || result.Variables[0].Type == gosnmp.NoSuchObject {
		return fmt.Errorf("device did not report sysUpTime")
	}

	return nil
}

// buildClient assembles a gosnmp client from device metadata. v2c with a
// community string is the default; v3 engages when a username is present.
func (c *SNMPChecker) buildClient(device *models.Device) (*gosnmp.GoSNMP, error) {
	client := &gosnmp.GoSNMP{
		Target:             device.IP,
		Port:               defaultSNMPPort,
		Timeout:            c.timeout,
		Retries:            c.retries,
		MaxOids:            gosnmp.MaxOids,
		ExponentialTimeout: true,
	}

	version := device.Metadata[metaSNMPVersion]

	switch strings.ToLower(version) {
	case "", "2c", "v2c":
		community := device.Metadata[metaSNMPCommunity]
		if community == "" {
			return nil, errNoSNMPAccess
		}

		client.Version = gosnmp.Version2c
		client.Community = community
	case "3", "v3":
		username := device.Metadata[metaSNMPUsername]
		if username == "" {
			return nil, errNoSNMPAccess
		}

		usm := &gosnmp.UsmSecurityParameters{UserName: username}
		hasAuth := configureV3Authentication(usm, device.Metadata)
		hasPriv := configureV3Privacy(usm, device.Metadata)

		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.SecurityParameters = usm
		client.MsgFlags = v3MsgFlags(hasAuth, hasPriv)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, version)
	}

	return client, nil
}

// v3MsgFlags matches the security level to the credentials actually
// configured, so authNoPriv and noAuthNoPriv devices stay reachable.
func v3MsgFlags(hasAuth, hasPriv bool) gosnmp.SnmpV3MsgFlags {
	switch {
	case hasAuth && hasPriv:
		return gosnmp.AuthPriv
	case hasAuth:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func configureV3Authentication(usm *gosnmp.UsmSecurityParameters, meta map[string]string) bool {
	switch strings.ToUpper(meta[metaSNMPAuthProto]) {
	case "MD5":
		usm.AuthenticationProtocol = gosnmp.MD5
	case "SHA":
		usm.AuthenticationProtocol = gosnmp.SHA
	case "SHA256":
		usm.AuthenticationProtocol = gosnmp.SHA256
	case "SHA512":
		usm.AuthenticationProtocol = gosnmp.SHA512
	default:
		return false
	}

	usm.AuthenticationPassphrase = meta[metaSNMPAuthPass]

	return usm.AuthenticationPassphrase != ""
}

func configureV3Privacy(usm *gosnmp.UsmSecurityParameters, meta map[string]string) bool {
	switch strings.ToUpper(meta[metaSNMPPrivProto]) {
	case "DES":
		usm.PrivacyProtocol = gosnmp.DES
	case "AES":
		usm.PrivacyProtocol = gosnmp.AES
	case "AES256":
		usm.PrivacyProtocol = gosnmp.AES256
	default:
		return false
	}

	usm.PrivacyPassphrase = meta[metaSNMPPrivPass]

	return usm.PrivacyPassphrase != ""
}

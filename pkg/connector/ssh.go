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
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carverauto/netaudit/pkg/models"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultCommandTimeout = 60 * time.Second
	defaultQuietPeriod    = 2 * time.Second
)

// sessionTimeouts resolves configured timeouts with defaults applied.
type sessionTimeouts struct {
	connect time.Duration
	command time.Duration
	quiet   time.Duration
}

func resolveTimeouts(cfg *models.ConnectorConfig) sessionTimeouts {
	t := sessionTimeouts{
		connect: defaultConnectTimeout,
		command: defaultCommandTimeout,
		quiet:   defaultQuietPeriod,
	}

	if cfg == nil {
		return t
	}

	if d := time.Duration(cfg.ConnectTimeout); d > 0 {
		t.connect = d
	}

	if d := time.Duration(cfg.CommandTimeout); d > 0 {
		t.command = d
	}

	if d := time.Duration(cfg.QuietPeriod); d > 0 {
		t.quiet = d
	}

	return t
}

// buildSSHConfig assembles the SSH client configuration from device
// credentials. An SSH key takes precedence over a password.
func buildSSHConfig(device *models.Device, timeout time.Duration) (*ssh.ClientConfig, error) {
	cfg := &ssh.ClientConfig{
		User:    device.Credentials.Username,
		Timeout: timeout,
		// Device host keys are managed out of band by the inventory;
		// the management network is assumed trusted here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
	}

	if len(device.Credentials.SSHKey) > 0 {
		signer, err := ssh.ParsePrivateKey(device.Credentials.SSHKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		cfg.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	} else {
		cfg.Auth = []ssh.AuthMethod{ssh.Password(device.Credentials.Password)}
	}

	return cfg, nil
}

// deviceAddress joins the device management IP and port, defaulting the port
// per dialect.
func deviceAddress(device *models.Device, defaultPort int) string {
	port := device.Port
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(device.IP, strconv.Itoa(port))
}

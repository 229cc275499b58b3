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
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
)

const (
	defaultSSHPort = 22

	defaultPromptPattern = `[\w.@()/:-]+[#>$]\s*$`
	defaultShowConfig    = "show running-config"
	defaultConfigEnter   = "configure terminal"
	defaultConfigExit    = "end"

	cliReadChunkSize = 4096
)

// Device metadata keys overriding CLI behavior per device.
const (
	metaCLIPrompt      = "cli_prompt"
	metaCLIShowConfig  = "cli_show_config"
	metaCLIConfigEnter = "cli_config_enter"
	metaCLIConfigExit  = "cli_config_exit"
)

// cliRejectionRe matches vendor CLI rejection lines ("% Invalid input ...").
var cliRejectionRe = regexp.MustCompile(`(?m)^\s*(%.*|.*[Ss]yntax error.*|.*[Ii]nvalid input.*)$`)

// cliConnector scrapes devices over an interactive SSH shell. Output
// collection is a prompt-detection state machine: chunks accumulate until
// either the prompt pattern appears in the most recent chunk or no new data
// arrives for a quiet period, which handles devices without a deterministic
// terminator. Any read error terminates the session; partial output is
// never reused.
type cliConnector struct {
	device    *models.Device
	addr      string
	sshConfig *ssh.ClientConfig
	timeouts  sessionTimeouts
	promptRe  *regexp.Regexp
	log       logger.Logger

	client    *ssh.Client
	session   *ssh.Session
	stdin     io.WriteCloser
	chunks    chan []byte
	readErrs  chan error
	connected bool
}

// NewCLIConnector builds the SSH/CLI fallback connector.
func NewCLIConnector(device *models.Device, cfg *models.ConnectorConfig, log logger.Logger) (Connector, error) {
	timeouts := resolveTimeouts(cfg)

	sshCfg, err := buildSSHConfig(device, timeouts.connect)
	if err != nil {
		return nil, err
	}

	pattern := defaultPromptPattern
	if p, ok := device.Metadata[metaCLIPrompt]; ok && p != "" {
		pattern = p
	}

	promptRe, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt pattern %q: %w", pattern, err)
	}

	return &cliConnector{
		device:    device,
		addr:      deviceAddress(device, defaultSSHPort),
		sshConfig: sshCfg,
		timeouts:  timeouts,
		promptRe:  promptRe,
		log:       log,
	}, nil
}

func (c *cliConnector) Connect(ctx context.Context) error {
	if c.connected {
		return nil
	}

	client, err := dialSSH(ctx, c.addr, c.sshConfig)
	if err != nil {
		return &ConnectionError{Host: c.addr, Err: err}
	}

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("failed to create SSH session: %w", err)}
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}

	if err := session.RequestPty("vt100", 0, 200, modes); err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("failed to request pty: %w", err)}
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("failed to get stdin pipe: %w", err)}
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("failed to get stdout pipe: %w", err)}
	}

	if err := session.Shell(); err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("failed to start shell: %w", err)}
	}

	c.client = client
	c.session = session
	c.stdin = stdin
	c.chunks = make(chan []byte, 16)
	c.readErrs = make(chan error, 1)
	c.connected = true

	go readChunks(stdout, c.chunks, c.readErrs)

	// Swallow the login banner up to the first prompt.
	if _, err := c.collectOutput(ctx); err != nil {
		c.Disconnect()
		return &ConnectionError{Host: c.addr, Err: fmt.Errorf("no prompt after login: %w", err)}
	}

	// Paging breaks full-config scrapes; disabling it is best-effort
	// because not every dialect has the command.
	if _, err := c.runCommand(ctx, "terminal length 0"); err != nil {
		c.log.Debug().Err(err).Str("device_id", c.device.ID).Msg("could not disable paging")
	}

	return nil
}

// readChunks pumps shell output into the chunk channel until the stream ends.
func readChunks(r io.Reader, chunks chan<- []byte, errs chan<- error) {
	for {
		buf := make([]byte, cliReadChunkSize)

		n, err := r.Read(buf)
		if n > 0 {
			chunks <- buf[:n]
		}

		if err != nil {
			errs <- err
			return
		}
	}
}

// collectOutput accumulates chunks until the prompt appears in the most
// recent chunk or the quiet period elapses with data in hand.
func (c *cliConnector) collectOutput(ctx context.Context) (string, error) {
	var buf strings.Builder

	quiet := time.NewTimer(c.timeouts.quiet)
	defer quiet.Stop()

	deadline := time.NewTimer(c.timeouts.command)
	defer deadline.Stop()

	for {
		select {
		case chunk := <-c.chunks:
			buf.Write(chunk)

			if c.promptRe.Match(chunk) {
				return buf.String(), nil
			}

			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}

			quiet.Reset(c.timeouts.quiet)
		case err := <-c.readErrs:
			c.Disconnect()
			return "", fmt.Errorf("shell read failed: %w", err)
		case <-quiet.C:
			if buf.Len() > 0 {
				return buf.String(), nil
			}

			quiet.Reset(c.timeouts.quiet)
		case <-ctx.Done():
			c.Disconnect()
			return "", ctx.Err()
		case <-deadline.C:
			c.Disconnect()
			return "", fmt.Errorf("timed out waiting for output after %s", c.timeouts.command)
		}
	}
}

// runCommand sends one line and scrapes its output, stripping the echoed
// command and the trailing prompt.
func (c *cliConnector) runCommand(ctx context.Context, cmd string) (string, error) {
	if !c.connected {
		return "", fmt.Errorf("not connected")
	}

	// Drop any output still queued from a previous exchange.
	for {
		select {
		case <-c.chunks:
			continue
		default:
		}

		break
	}

	if _, err := c.stdin.Write([]byte(cmd + "\n")); err != nil {
		c.Disconnect()
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	out, err := c.collectOutput(ctx)
	if err != nil {
		return "", err
	}

	return trimCommandOutput(out, cmd, c.promptRe), nil
}

// trimCommandOutput removes the leading command echo and the trailing
// prompt line from scraped output.
func trimCommandOutput(out, cmd string, promptRe *regexp.Regexp) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")

	start := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == strings.TrimSpace(cmd) {
		start = 1
	}

	end := len(lines)
	if end > start && promptRe.MatchString(lines[end-1]) {
		end--
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func (c *cliConnector) Disconnect() {
	if !c.connected && c.client == nil {
		return
	}

	c.connected = false

	if c.stdin != nil {
		_ = c.stdin.Close()
		c.stdin = nil
	}

	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}

	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.log.Debug().Err(err).Str("device_id", c.device.ID).Msg("error closing SSH client")
		}

		c.client = nil
	}
}

func (c *cliConnector) GetConfig(ctx context.Context) (string, error) {
	cmd := defaultShowConfig
	if v, ok := c.device.Metadata[metaCLIShowConfig]; ok && v != "" {
		cmd = v
	}

	return c.runCommand(ctx, cmd)
}

// GetState treats the locator as a CLI show command; the output text is the
// state value.
func (c *cliConnector) GetState(ctx context.Context, locator string) (any, error) {
	out, err := c.runCommand(ctx, locator)
	if err != nil {
		return nil, &RetrievalError{Locator: locator, Err: err}
	}

	if strings.TrimSpace(out) == "" || cliRejectionRe.MatchString(out) {
		return nil, &RetrievalError{Locator: locator, Err: errLocatorNotFound}
	}

	return out, nil
}

// EditConfig enters configuration mode and sends the payload line by line.
// The CLI has no candidate datastore, so Validate is satisfied by checking
// each line's response for a rejection before continuing.
func (c *cliConnector) EditConfig(ctx context.Context, req *EditRequest) error {
	if !c.connected {
		return &ConfigApplyError{Reason: "not connected"}
	}

	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		return &ConfigApplyError{Reason: "empty config payload"}
	}

	enter := defaultConfigEnter
	if v, ok := c.device.Metadata[metaCLIConfigEnter]; ok && v != "" {
		enter = v
	}

	exit := defaultConfigExit
	if v, ok := c.device.Metadata[metaCLIConfigExit]; ok && v != "" {
		exit = v
	}

	if out, err := c.runCommand(ctx, enter); err != nil {
		return &ConfigApplyError{Reason: "could not enter config mode", Err: err}
	} else if m := cliRejectionRe.FindString(out); m != "" {
		return &ConfigApplyError{Reason: strings.TrimSpace(m)}
	}

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		out, err := c.runCommand(ctx, line)
		if err != nil {
			return &ConfigApplyError{Reason: fmt.Sprintf("apply of %q failed", line), Err: err}
		}

		if m := cliRejectionRe.FindString(out); m != "" {
			// Leave config mode before reporting so the session
			// stays usable for the next command batch.
			_, _ = c.runCommand(ctx, exit)

			return &ConfigApplyError{Reason: strings.TrimSpace(m)}
		}
	}

	if _, err := c.runCommand(ctx, exit); err != nil {
		return &ConfigApplyError{Reason: "could not leave config mode", Err: err}
	}

	return nil
}

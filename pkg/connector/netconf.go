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
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carverauto/netaudit/pkg/logger"
)

const (
	defaultNetconfPort = 830

	netconfFrameEnd  = "]]>]]>"
	netconfBaseNS    = "urn:ietf:params:xml:ns:netconf:base:1.0"
	capCandidate     = "urn:ietf:params:netconf:capability:candidate:1.0"
	capValidate      = "urn:ietf:params:netconf:capability:validate:1.0"
	capXPath         = "urn:ietf:params:netconf:capability:xpath:1.0"
	targetRunning    = "running"
	targetCandidate  = "candidate"
	maxFrameSize     = 16 << 20 // refuse replies larger than 16 MiB
	netconfSubsystem = "netconf"
)

// helloMessage is the NETCONF hello envelope.
type helloMessage struct {
	XMLName      xml.Name `xml:"hello"`
	Namespace    string   `xml:"xmlns,attr"`
	Capabilities []string `xml:"capabilities>capability"`
	SessionID    string   `xml:"session-id,omitempty"`
}

// netconfRPC is the request envelope.
type netconfRPC struct {
	XMLName   xml.Name `xml:"rpc"`
	MessageID string   `xml:"message-id,attr"`
	Namespace string   `xml:"xmlns,attr"`
	Operation string   `xml:",innerxml"`
}

// rpcError is a NETCONF rpc-error element.
type rpcError struct {
	Type     string `xml:"error-type"`
	Tag      string `xml:"error-tag"`
	Severity string `xml:"error-severity"`
	Message  string `xml:"error-message"`
	Info     string `xml:"error-info"`
}

// rpcReply is the response envelope.
type rpcReply struct {
	XMLName   xml.Name   `xml:"rpc-reply"`
	MessageID string     `xml:"message-id,attr"`
	Errors    []rpcError `xml:"rpc-error"`
}

// netconfSession wraps one SSH NETCONF subsystem session with hello
// exchange, end-of-message framing and RPC correlation. Protocol state is
// inherently sequential; callers serialize access.
type netconfSession struct {
	addr      string
	sshConfig *ssh.ClientConfig
	timeouts  sessionTimeouts
	log       logger.Logger

	mu           sync.Mutex
	client       *ssh.Client
	session      *ssh.Session
	stdin        io.WriteCloser
	stdout       *bufio.Reader
	sessionID    string
	capabilities []string
	connected    bool
	msgSeq       uint64
}

func (s *netconfSession) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	client, err := dialSSH(ctx, s.addr, s.sshConfig)
	if err != nil {
		return &ConnectionError{Host: s.addr, Err: err}
	}

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return &ConnectionError{Host: s.addr, Err: fmt.Errorf("failed to create SSH session: %w", err)}
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: s.addr, Err: fmt.Errorf("failed to get stdin pipe: %w", err)}
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: s.addr, Err: fmt.Errorf("failed to get stdout pipe: %w", err)}
	}

	if err := session.RequestSubsystem(netconfSubsystem); err != nil {
		_ = session.Close()
		_ = client.Close()

		return &ConnectionError{Host: s.addr, Err: fmt.Errorf("failed to start NETCONF subsystem: %w", err)}
	}

	s.client = client
	s.session = session
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)

	if err := s.exchangeHello(ctx); err != nil {
		s.closeLocked()
		return &ConnectionError{Host: s.addr, Err: fmt.Errorf("failed to exchange hello: %w", err)}
	}

	s.connected = true

	return nil
}

// dialSSH establishes the SSH transport, honoring context cancellation by
// force-closing the half-open connection.
func dialSSH(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	type dialResult struct {
		client *ssh.Client
		err    error
	}

	done := make(chan dialResult, 1)

	go func() {
		client, err := ssh.Dial("tcp", addr, cfg)
		done <- dialResult{client: client, err: err}
	}()

	select {
	case res := <-done:
		return res.client, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.client != nil {
				_ = res.client.Close()
			}
		}()

		return nil, ctx.Err()
	}
}

func (s *netconfSession) exchangeHello(ctx context.Context) error {
	clientHello := &helloMessage{
		Namespace: netconfBaseNS,
		Capabilities: []string{
			"urn:ietf:params:netconf:base:1.0",
			"urn:ietf:params:netconf:base:1.1",
			"urn:ietf:params:netconf:capability:writable-running:1.0",
			capCandidate,
			capValidate,
			capXPath,
		},
	}

	helloXML, err := xml.Marshal(clientHello)
	if err != nil {
		return fmt.Errorf("failed to marshal hello: %w", err)
	}

	if _, err := s.stdin.Write(append(helloXML, []byte(netconfFrameEnd)...)); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}

	raw, err := s.readFrame(ctx)
	if err != nil {
		return fmt.Errorf("failed to read server hello: %w", err)
	}

	var serverHello helloMessage
	if err := xml.Unmarshal([]byte(raw), &serverHello); err != nil {
		return fmt.Errorf("failed to parse server hello: %w", err)
	}

	s.capabilities = serverHello.Capabilities
	s.sessionID = serverHello.SessionID

	return nil
}

// readFrame reads one end-of-message delimited frame. A context expiry
// force-closes the session so the blocked read returns instead of dangling.
func (s *netconfSession) readFrame(ctx context.Context) (string, error) {
	type readResult struct {
		frame string
		err   error
	}

	done := make(chan readResult, 1)

	go func() {
		var buf strings.Builder

		for {
			b, err := s.stdout.ReadByte()
			if err != nil {
				done <- readResult{err: err}
				return
			}

			buf.WriteByte(b)

			if buf.Len() > maxFrameSize {
				done <- readResult{err: fmt.Errorf("frame exceeds %d bytes", maxFrameSize)}
				return
			}

			if b == '>' && strings.HasSuffix(buf.String(), netconfFrameEnd) {
				frame := strings.TrimSuffix(buf.String(), netconfFrameEnd)
				done <- readResult{frame: strings.TrimSpace(frame)}

				return
			}
		}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			// A torn-down transport can race an expiring context; the
			// deadline is the error the caller acts on.
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.closeLocked()
				return "", ctxErr
			}

			return "", res.err
		}

		return res.frame, nil
	case <-ctx.Done():
		s.closeLocked()
		return "", ctx.Err()
	case <-time.After(s.timeouts.command):
		s.closeLocked()
		return "", fmt.Errorf("timed out waiting for NETCONF reply after %s", s.timeouts.command)
	}
}

// sendRPC sends one RPC and returns the raw reply body. Device-reported
// rpc-errors surface as *ConfigApplyError for edit operations and plain
// errors otherwise; callers wrap as appropriate.
func (s *netconfSession) sendRPC(ctx context.Context, operation string) (string, error) {
	if !s.connected {
		return "", fmt.Errorf("not connected")
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.msgSeq++

	rpc := netconfRPC{
		MessageID: fmt.Sprintf("%d", s.msgSeq),
		Namespace: netconfBaseNS,
		Operation: operation,
	}

	rpcXML, err := xml.Marshal(rpc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal RPC: %w", err)
	}

	if _, err := s.stdin.Write(append(rpcXML, []byte(netconfFrameEnd)...)); err != nil {
		s.closeLocked()
		return "", fmt.Errorf("failed to send RPC: %w", err)
	}

	raw, err := s.readFrame(ctx)
	if err != nil {
		return "", err
	}

	var reply rpcReply
	if err := xml.Unmarshal([]byte(raw), &reply); err != nil {
		return "", fmt.Errorf("failed to parse RPC reply: %w", err)
	}

	if len(reply.Errors) > 0 {
		return raw, rpcErrorsToErr(reply.Errors)
	}

	return raw, nil
}

// rpcErrorsToErr folds device rpc-errors into one error, keeping the
// device's wording verbatim.
func rpcErrorsToErr(errs []rpcError) error {
	parts := make([]string, 0, len(errs))

	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = strings.TrimSpace(e.Info)
		}

		parts = append(parts, fmt.Sprintf("%s: %s", e.Tag, msg))
	}

	return fmt.Errorf("rpc-error: %s", strings.Join(parts, "; "))
}

// getConfig issues get-config against the running datastore with an
// optional filter ("subtree" or "xpath").
func (s *netconfSession) getConfig(ctx context.Context, filterType, filter string) (string, error) {
	op := fmt.Sprintf("<get-config><source><running/></source>%s</get-config>", buildFilter(filterType, filter))
	return s.sendRPC(ctx, op)
}

// get issues the operational-state get RPC with an optional filter.
func (s *netconfSession) get(ctx context.Context, filterType, filter string) (string, error) {
	op := fmt.Sprintf("<get>%s</get>", buildFilter(filterType, filter))
	return s.sendRPC(ctx, op)
}

func buildFilter(filterType, filter string) string {
	if filter == "" {
		return ""
	}

	if filterType == "xpath" {
		return fmt.Sprintf("<filter type=%q select=%q/>", filterType, filter)
	}

	return fmt.Sprintf("<filter type=%q>%s</filter>", filterType, filter)
}

// editConfig applies a config fragment. With validate set and a candidate
// datastore available it runs the candidate-validate-commit cycle,
// discarding the candidate on any failure; otherwise it merges straight
// into running.
func (s *netconfSession) editConfig(ctx context.Context, content string, validate bool) error {
	target := targetRunning
	useCandidate := validate && s.hasCapability(capCandidate)

	if useCandidate {
		target = targetCandidate
	}

	op := fmt.Sprintf(
		"<edit-config><target><%s/></target><default-operation>merge</default-operation><config>%s</config></edit-config>",
		target, content)

	if _, err := s.sendRPC(ctx, op); err != nil {
		if useCandidate {
			s.discardChanges(ctx)
		}

		return &ConfigApplyError{Reason: err.Error(), Err: err}
	}

	if !useCandidate {
		return nil
	}

	if s.hasCapability(capValidate) {
		if _, err := s.sendRPC(ctx, "<validate><source><candidate/></source></validate>"); err != nil {
			s.discardChanges(ctx)
			return &ConfigApplyError{Reason: err.Error(), Err: err}
		}
	}

	if _, err := s.sendRPC(ctx, "<commit/>"); err != nil {
		s.discardChanges(ctx)
		return &ConfigApplyError{Reason: err.Error(), Err: err}
	}

	return nil
}

// discardChanges drops the candidate datastore, best-effort.
func (s *netconfSession) discardChanges(ctx context.Context) {
	if _, err := s.sendRPC(ctx, "<discard-changes/>"); err != nil && s.log != nil {
		s.log.Warn().Err(err).Str("host", s.addr).Msg("failed to discard candidate changes")
	}
}

func (s *netconfSession) hasCapability(uri string) bool {
	for _, c := range s.capabilities {
		if strings.Contains(c, uri) {
			return true
		}
	}

	return false
}

// close tears the session down. Safe to call repeatedly.
func (s *netconfSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *netconfSession) closeLocked() {
	s.connected = false

	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}

	if s.session != nil {
		_ = s.session.Close()
		s.session = nil
	}

	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}

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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/netaudit/pkg/audit"
	"github.com/carverauto/netaudit/pkg/cli"
	"github.com/carverauto/netaudit/pkg/config"
	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/deploy"
	"github.com/carverauto/netaudit/pkg/events"
	"github.com/carverauto/netaudit/pkg/health"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/remediate"
	"github.com/carverauto/netaudit/pkg/store/filestore"
)

const defaultConfigPath = "/etc/netaudit/core.json"

// StoreConfig locates the file-backed inventory and the state directory.
type StoreConfig struct {
	InventoryPath string `json:"inventory_path"`
	StateDir      string `json:"state_dir"`
}

// AppConfig is the on-disk configuration of the netaudit binary.
type AppConfig struct {
	models.CoreConfig

	Store   StoreConfig    `json:"store"`
	Logging *logger.Config `json:"logging,omitempty"`
}

// Validate applies engine defaults and checks the store paths.
func (c *AppConfig) Validate() error {
	if c.Store.InventoryPath == "" {
		return fmt.Errorf("store.inventory_path is required")
	}

	if c.Store.StateDir == "" {
		c.Store.StateDir = "/var/lib/netaudit"
	}

	return c.CoreConfig.Validate()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "netaudit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("NETAUDIT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var cfg AppConfig
	if err := config.NewConfig(nil).LoadAndValidate(ctx, configPath, &cfg); err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}

	log, err := logger.NewLogger(cfg.Logging, "netaudit")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	st, err := filestore.New(cfg.Store.InventoryPath, cfg.Store.StateDir, log)
	if err != nil {
		return err
	}

	publisher, cleanup, err := buildPublisher(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := connector.DefaultRegistry()

	c := cli.New(cli.Deps{
		Auditor:    audit.NewEngine(st, registry, &cfg.CoreConfig, log),
		Remediator: remediate.NewEngine(st, registry, &cfg.CoreConfig, publisher, log),
		Deployer:   deploy.NewEngine(st, registry, &cfg.CoreConfig, log),
		Checker:    health.NewSNMPChecker(st, log),
		Store:      st,
		Output:     os.Stdout,
	})

	return c.Execute(ctx)
}

// buildPublisher connects to NATS when events are enabled; the returned
// cleanup drains the connection after the command finishes so queued
// events flush before exit.
func buildPublisher(ctx context.Context, cfg *AppConfig, log logger.Logger) (events.Publisher, func(), error) {
	if !cfg.Events.Enabled {
		return events.NoopPublisher{}, func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("netaudit"))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS %s: %w", cfg.NATS.URL, err)
	}

	publisher, err := events.CreateEventPublisher(ctx, nc, cfg.NATS, &cfg.Events, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection")
		}
	}

	return publisher, cleanup, nil
}

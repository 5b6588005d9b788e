// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config loads per-test device configuration and applies it to one
// or more devices in the canonical setup order.
package config

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/automotive-tests/connutils/setup"
)

// Flag describes one Phenotype flag override to ensure before the test.
type Flag struct {
	Package string         `yaml:"package"`
	Name    string         `yaml:"name"`
	Type    setup.FlagType `yaml:"type"`
	Value   string         `yaml:"value"`
}

// Wifi holds the credentials of the test AP. An empty password means an
// open network.
type Wifi struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

// Config is the device configuration for one test run.
type Config struct {
	CountryCode string   `yaml:"country_code"`
	Wifi        Wifi     `yaml:"wifi"`
	LogTags     []string `yaml:"log_tags"`
	Flags       []Flag   `yaml:"flags"`
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %v", path)
	}
	return Parse(data)
}

func (c *Config) validate() error {
	for i, f := range c.Flags {
		if f.Package == "" {
			return errors.Errorf("flag %d (%q): missing package", i, f.Name)
		}
		if f.Name == "" {
			return errors.Errorf("flag %d in package %q: missing name", i, f.Package)
		}
		switch f.Type {
		case setup.FlagBool, setup.FlagLong, setup.FlagString:
		default:
			return errors.Errorf("flag %q: unknown type %q", f.Name, f.Type)
		}
	}
	return nil
}

// Device is one device the configuration is applied to. Wifi may be nil when
// no snippet connection is available; the configuration must then not name a
// Wi-Fi network.
type Device struct {
	Setup *setup.DeviceSetup
	Wifi  setup.WifiRPC
}

// Apply runs the configuration against one device: verbose log tags first so
// later steps are covered, then country code, flag overrides, and finally the
// Wi-Fi connection.
func (c *Config) Apply(ctx context.Context, d Device) error {
	if err := d.Setup.EnableLogs(ctx, c.LogTags...); err != nil {
		return err
	}
	if c.CountryCode != "" {
		if err := d.Setup.SetCountryCode(ctx, c.CountryCode); err != nil {
			return err
		}
	}
	for _, f := range c.Flags {
		if err := d.Setup.EnsureFlag(ctx, f.Package, f.Name, f.Type, f.Value); err != nil {
			return errors.Wrapf(err, "failed to ensure flag %v", f.Name)
		}
	}
	if c.Wifi.SSID != "" {
		if d.Wifi == nil {
			return errors.Errorf("config names Wi-Fi network %q but the device has no snippet connection", c.Wifi.SSID)
		}
		if err := d.Setup.ConnectToWifi(ctx, d.Wifi, c.Wifi.SSID, c.Wifi.Password); err != nil {
			return errors.Wrapf(err, "failed to connect to %v", c.Wifi.SSID)
		}
	}
	return nil
}

// ApplyAll applies the configuration to all devices concurrently and returns
// the first error.
func (c *Config) ApplyAll(ctx context.Context, devices ...Device) error {
	zerolog.Ctx(ctx).Info().Msgf("Apply config to %d device(s)", len(devices))
	g, ctx := errgroup.WithContext(ctx)
	for _, d := range devices {
		d := d
		g.Go(func() error {
			return c.Apply(ctx, d)
		})
	}
	return g.Wait()
}

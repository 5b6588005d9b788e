// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// WifiRPC is the Wi-Fi surface of the device automation snippet used during
// setup. *snippet.Client satisfies it.
type WifiRPC interface {
	CallVoid(ctx context.Context, method string, args ...interface{}) error
	CallBool(ctx context.Context, method string, args ...interface{}) (bool, error)
}

// ConnectToWifi connects the device to the given Wi-Fi network through the
// snippet and returns once the connection request is accepted. An empty
// password means an open network.
func (s *DeviceSetup) ConnectToWifi(ctx context.Context, rpc WifiRPC, ssid, password string) error {
	enabled, err := rpc.CallBool(ctx, "wifiIsEnabled")
	if err != nil {
		return err
	}
	if !enabled {
		if err := rpc.CallVoid(ctx, "wifiEnable"); err != nil {
			return err
		}
	}
	zerolog.Ctx(ctx).Info().Msgf("Connect to wifi: ssid: %s", ssid)
	// The snippet expects null rather than an empty password for open networks.
	var pw interface{}
	if password != "" {
		pw = password
	}
	return rpc.CallVoid(ctx, "wifiConnectSimple", ssid, pw)
}

// ConnectToWifiTimed connects to the given Wi-Fi network and returns how
// long the connection took.
func (s *DeviceSetup) ConnectToWifiTimed(ctx context.Context, rpc WifiRPC, ssid, password string) (time.Duration, error) {
	zerolog.Ctx(ctx).Info().Msg("Start connecting to wifi STA/AP")
	start := time.Now()
	if err := s.ConnectToWifi(ctx, rpc, ssid, password); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// DisconnectFromWifi clears the configured Wi-Fi networks on the device.
// Only rooted devices allow clearing networks.
func (s *DeviceSetup) DisconnectFromWifi(ctx context.Context, rpc WifiRPC) error {
	if !s.isRooted(ctx) {
		zerolog.Ctx(ctx).Info().Msg("Can't clear wifi networks on a non-rooted device")
		return nil
	}
	if err := rpc.CallVoid(ctx, "wifiClearConfiguredNetworks"); err != nil {
		return err
	}
	return sleep(ctx, s.wifiDisconnectWait)
}

// DumpWifiSTAStatus returns the Wi-Fi STA status line of the device, or an
// empty string if it cannot be read.
func (s *DeviceSetup) DumpWifiSTAStatus(ctx context.Context) string {
	out, err := s.r.Shell(ctx, "cmd wifi status | grep WifiInfo")
	if err != nil {
		return ""
	}
	return out
}

// DumpWifiP2PStatus returns the Wi-Fi p2p status dump of the device, or an
// empty string if it cannot be read.
func (s *DeviceSetup) DumpWifiP2PStatus(ctx context.Context) string {
	out, err := s.r.Shell(ctx, "dumpsys", "wifip2p")
	if err != nil {
		return ""
	}
	return out
}

// WifiSTAFrequency returns the Wi-Fi STA frequency in MHz, or InvalidInt if
// it cannot be determined.
func (s *DeviceSetup) WifiSTAFrequency(ctx context.Context) int {
	status := s.DumpWifiSTAStatus(ctx)
	if status == "" {
		return InvalidInt
	}
	return IntBetween(status, "Frequency:", "MHz")
}

// WifiP2PFrequency returns the frequency in MHz of the Wi-Fi p2p group this
// device owns, or InvalidInt if it cannot be determined.
func (s *DeviceSetup) WifiP2PFrequency(ctx context.Context) int {
	status := s.DumpWifiP2PStatus(ctx)
	if status == "" {
		return InvalidInt
	}
	return IntBetween(status, "channelFrequency=", ", groupRole=GroupOwner")
}

// WifiSTAMaxLinkSpeed returns the maximum supported Tx link speed in Mbps of
// the Wi-Fi STA, or InvalidInt if it cannot be determined.
func (s *DeviceSetup) WifiSTAMaxLinkSpeed(ctx context.Context) int {
	status := s.DumpWifiSTAStatus(ctx)
	if status == "" {
		return InvalidInt
	}
	return IntBetween(status, "Max Supported Tx Link speed:", "Mbps")
}

// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeWifiRPC is a canned snippet Wi-Fi surface recording the calls made.
type fakeWifiRPC struct {
	wifiEnabled bool
	calls       []string
	lastArgs    []interface{}
}

func (f *fakeWifiRPC) CallVoid(ctx context.Context, method string, args ...interface{}) error {
	f.calls = append(f.calls, method)
	f.lastArgs = args
	if method == "wifiEnable" {
		f.wifiEnabled = true
	}
	return nil
}

func (f *fakeWifiRPC) CallBool(ctx context.Context, method string, args ...interface{}) (bool, error) {
	f.calls = append(f.calls, method)
	if method == "wifiIsEnabled" {
		return f.wifiEnabled, nil
	}
	return false, nil
}

func TestConnectToWifiEnablesWifiFirst(t *testing.T) {
	f := &fakeWifiRPC{wifiEnabled: false}
	s := newFast(&fakeShell{})
	if err := s.ConnectToWifi(context.Background(), f, "lab-ap", "hunter2"); err != nil {
		t.Fatalf("ConnectToWifi failed: %v", err)
	}
	want := []string{"wifiIsEnabled", "wifiEnable", "wifiConnectSimple"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("RPC calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{"lab-ap", "hunter2"}, f.lastArgs); diff != "" {
		t.Errorf("wifiConnectSimple args mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectToWifiOpenNetworkPassesNilPassword(t *testing.T) {
	f := &fakeWifiRPC{wifiEnabled: true}
	s := newFast(&fakeShell{})
	if err := s.ConnectToWifi(context.Background(), f, "open-ap", ""); err != nil {
		t.Fatalf("ConnectToWifi failed: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"open-ap", nil}, f.lastArgs); diff != "" {
		t.Errorf("wifiConnectSimple args mismatch (-want +got):\n%s", diff)
	}
}

func TestDisconnectFromWifiSkippedOnUnrootedDevice(t *testing.T) {
	f := &fakeWifiRPC{wifiEnabled: true}
	s := newFast(&fakeShell{rooted: false})
	if err := s.DisconnectFromWifi(context.Background(), f); err != nil {
		t.Fatalf("DisconnectFromWifi failed: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("DisconnectFromWifi made RPC calls %v on unrooted device, want none", f.calls)
	}
}

func TestDisconnectFromWifiClearsNetworks(t *testing.T) {
	f := &fakeWifiRPC{wifiEnabled: true}
	s := newFast(&fakeShell{rooted: true})
	if err := s.DisconnectFromWifi(context.Background(), f); err != nil {
		t.Fatalf("DisconnectFromWifi failed: %v", err)
	}
	if diff := cmp.Diff([]string{"wifiClearConfiguredNetworks"}, f.calls); diff != "" {
		t.Errorf("RPC calls mismatch (-want +got):\n%s", diff)
	}
}

func TestWifiSTAFrequency(t *testing.T) {
	f := &fakeShell{out: map[string]string{
		"cmd wifi status": `Wifi is enabled, WifiInfo: SSID: "lab-ap", Frequency: 5180 MHz, RSSI: -40`,
	}}
	s := newFast(f)
	if got := s.WifiSTAFrequency(context.Background()); got != 5180 {
		t.Errorf("WifiSTAFrequency = %d, want 5180", got)
	}
}

func TestWifiSTAFrequencyDumpFailure(t *testing.T) {
	f := &fakeShell{errs: map[string]int{"cmd wifi status": 10}}
	s := newFast(f)
	if got := s.WifiSTAFrequency(context.Background()); got != InvalidInt {
		t.Errorf("WifiSTAFrequency = %d on dump failure, want InvalidInt", got)
	}
}

func TestWifiSTAMaxLinkSpeed(t *testing.T) {
	f := &fakeShell{out: map[string]string{
		"cmd wifi status": `WifiInfo: Max Supported Tx Link speed: 866 Mbps, more`,
	}}
	s := newFast(f)
	if got := s.WifiSTAMaxLinkSpeed(context.Background()); got != 866 {
		t.Errorf("WifiSTAMaxLinkSpeed = %d, want 866", got)
	}
}

func TestWifiP2PFrequency(t *testing.T) {
	f := &fakeShell{out: map[string]string{
		"dumpsys wifip2p": "mGroups: channelFrequency=5745, groupRole=GroupOwner",
	}}
	s := newFast(f)
	if got := s.WifiP2PFrequency(context.Background()); got != 5745 {
		t.Errorf("WifiP2PFrequency = %d, want 5745", got)
	}
}

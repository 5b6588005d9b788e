// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// fakeShell records shell commands and serves canned outputs. Commands are
// matched by prefix so argument details don't need to be repeated in tests.
type fakeShell struct {
	rooted bool
	cmds   []string
	out    map[string]string // prefix -> output
	errs   map[string]int    // prefix -> number of times to fail
}

func (f *fakeShell) String() string { return "FAKESERIAL" }

func (f *fakeShell) Shell(ctx context.Context, args ...string) (string, error) {
	cmd := strings.Join(args, " ")
	f.cmds = append(f.cmds, cmd)
	for prefix, n := range f.errs {
		if strings.HasPrefix(cmd, prefix) && n > 0 {
			f.errs[prefix] = n - 1
			return "", errors.Errorf("adb error running %q", cmd)
		}
	}
	if strings.HasPrefix(cmd, "id -u") {
		if f.rooted {
			return "0", nil
		}
		return "2000", nil
	}
	for prefix, out := range f.out {
		if strings.HasPrefix(cmd, prefix) {
			return out, nil
		}
	}
	return "", nil
}

// count returns how many recorded commands start with prefix.
func (f *fakeShell) count(prefix string) int {
	n := 0
	for _, cmd := range f.cmds {
		if strings.HasPrefix(cmd, prefix) {
			n++
		}
	}
	return n
}

// newFast returns a DeviceSetup over f with all settle delays zeroed.
func newFast(f *fakeShell) *DeviceSetup {
	s := New(f)
	s.retryWait = 0
	s.flagWriteWait = 0
	s.airplaneModeWait = 0
	s.countryCodeWait = 0
	s.wifiDisconnectWait = 0
	return s
}

func TestRunWithRetrySucceedsFirstTry(t *testing.T) {
	s := newFast(&fakeShell{})
	attempts := 0
	if err := s.runWithRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		return nil
	}); err != nil {
		t.Errorf("runWithRetry failed: %v", err)
	}
	if attempts != 1 {
		t.Errorf("op ran %d times, want 1", attempts)
	}
}

func TestRunWithRetryRetriesExactlyOnce(t *testing.T) {
	s := newFast(&fakeShell{})
	attempts := 0
	if err := s.runWithRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}); err != nil {
		t.Errorf("runWithRetry failed after recovery: %v", err)
	}
	if attempts != 2 {
		t.Errorf("op ran %d times, want 2", attempts)
	}
}

func TestRunWithRetryPropagatesSecondFailure(t *testing.T) {
	s := newFast(&fakeShell{})
	attempts := 0
	err := s.runWithRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		return errors.New("persistent")
	})
	if err == nil {
		t.Error("runWithRetry unexpectedly succeeded")
	}
	if attempts != 2 {
		t.Errorf("op ran %d times, want 2", attempts)
	}
}

func TestSetCountryCodeSkippedOnUnrootedDevice(t *testing.T) {
	f := &fakeShell{rooted: false}
	s := newFast(f)
	if err := s.SetCountryCode(context.Background(), "US"); err != nil {
		t.Errorf("SetCountryCode failed: %v", err)
	}
	if got := f.count("cmd wifi"); got != 0 {
		t.Errorf("SetCountryCode issued %d wifi commands on unrooted device, want 0", got)
	}
}

func TestSetCountryCodeRooted(t *testing.T) {
	f := &fakeShell{rooted: true}
	s := newFast(f)
	if err := s.SetCountryCode(context.Background(), "JP"); err != nil {
		t.Errorf("SetCountryCode failed: %v", err)
	}
	for _, want := range []string{
		"cmd wifi set-wifi-enabled disabled",
		"am broadcast -a com.android.internal.telephony.action.COUNTRY_OVERRIDE --es country JP",
		"cmd wifi force-country-code enabled JP",
		"cmd wifi set-wifi-enabled enabled",
	} {
		if f.count(want) != 1 {
			t.Errorf("SetCountryCode did not issue %q exactly once", want)
		}
	}
}

func TestSetCountryCodeRetriesOnTransientFailure(t *testing.T) {
	f := &fakeShell{rooted: true, errs: map[string]int{"cmd wifi set-wifi-enabled disabled": 1}}
	s := newFast(f)
	if err := s.SetCountryCode(context.Background(), "US"); err != nil {
		t.Errorf("SetCountryCode failed despite retry: %v", err)
	}
	if got := f.count("cmd wifi set-wifi-enabled disabled"); got != 2 {
		t.Errorf("wifi disable issued %d times, want 2 (original + retry)", got)
	}
}

func TestEnableAirplaneModeUnrootedSkipsGlobalSetting(t *testing.T) {
	f := &fakeShell{rooted: false}
	s := newFast(f)
	if err := s.EnableAirplaneMode(context.Background()); err != nil {
		t.Errorf("EnableAirplaneMode failed: %v", err)
	}
	if got := f.count("settings put global airplane_mode_on"); got != 0 {
		t.Errorf("airplane_mode_on setting written %d times on unrooted device, want 0", got)
	}
	if got := f.count("svc wifi disable"); got != 1 {
		t.Errorf("svc wifi disable issued %d times, want 1", got)
	}
	if got := f.count("svc bluetooth disable"); got != 1 {
		t.Errorf("svc bluetooth disable issued %d times, want 1", got)
	}
}

func TestDisableAirplaneModeRooted(t *testing.T) {
	f := &fakeShell{rooted: true}
	s := newFast(f)
	if err := s.DisableAirplaneMode(context.Background()); err != nil {
		t.Errorf("DisableAirplaneMode failed: %v", err)
	}
	for _, want := range []string{
		"settings put global airplane_mode_on 0",
		"am broadcast -a android.intent.action.AIRPLANE_MODE --ez state false",
		"svc wifi enable",
		"svc bluetooth enable",
	} {
		if f.count(want) != 1 {
			t.Errorf("DisableAirplaneMode did not issue %q exactly once", want)
		}
	}
}

func TestEnableLogsDefaultTags(t *testing.T) {
	f := &fakeShell{}
	s := newFast(f)
	if err := s.EnableLogs(context.Background()); err != nil {
		t.Errorf("EnableLogs failed: %v", err)
	}
	if got := f.count("setprop log.tag."); got != len(DefaultLogTags) {
		t.Errorf("EnableLogs issued %d setprop commands, want %d", got, len(DefaultLogTags))
	}
	if f.count("setprop log.tag.NearbyConnections VERBOSE") != 1 {
		t.Error("EnableLogs did not enable the NearbyConnections tag")
	}
}

func TestGrantManageExternalStorageSkippedBelowAPI30(t *testing.T) {
	f := &fakeShell{out: map[string]string{"getprop ro.build.version.sdk": "29"}}
	s := newFast(f)
	if err := s.GrantManageExternalStoragePermission(context.Background(), "com.test.snippet"); err != nil {
		t.Errorf("GrantManageExternalStoragePermission failed: %v", err)
	}
	if got := f.count("appops set"); got != 0 {
		t.Errorf("appops issued %d times on API 29, want 0", got)
	}
}

func TestGrantManageExternalStorage(t *testing.T) {
	f := &fakeShell{out: map[string]string{"getprop ro.build.version.sdk": "33"}}
	s := newFast(f)
	if err := s.GrantManageExternalStoragePermission(context.Background(), "com.test.snippet"); err != nil {
		t.Errorf("GrantManageExternalStoragePermission failed: %v", err)
	}
	if f.count("appops set --uid com.test.snippet MANAGE_EXTERNAL_STORAGE allow") != 1 {
		t.Error("appops grant not issued exactly once")
	}
}

func TestDumpGMSVersion(t *testing.T) {
	f := &fakeShell{out: map[string]string{"dumpsys package com.google.android.gms": "versionCode=242033038 minSdk=31"}}
	s := newFast(f)
	got, err := s.DumpGMSVersion(context.Background())
	if err != nil {
		t.Fatalf("DumpGMSVersion failed: %v", err)
	}
	want := "versionCode=242033038 minSdk=31"
	if got["GMS core version on FAKESERIAL"] != want {
		t.Errorf("DumpGMSVersion = %v, want value %q", got, want)
	}
}

func TestDumpGMSVersionRetriesOnce(t *testing.T) {
	f := &fakeShell{
		out:  map[string]string{"dumpsys package com.google.android.gms": "versionCode=242033038"},
		errs: map[string]int{"dumpsys package com.google.android.gms": 1},
	}
	s := newFast(f)
	if _, err := s.DumpGMSVersion(context.Background()); err != nil {
		t.Errorf("DumpGMSVersion failed despite retry: %v", err)
	}
	if got := f.count("dumpsys package com.google.android.gms"); got != 2 {
		t.Errorf("dumpsys issued %d times, want 2", got)
	}
}

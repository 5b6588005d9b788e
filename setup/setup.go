// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package setup configures Android devices for connectivity tests: country
// code, airplane mode, Wi-Fi, feature flags and verbose logging. All
// configuration is best-effort orchestration of shell commands; the device
// state itself lives on the device.
package setup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Fixed settle delays for asynchronous device state changes.
const (
	wifiCountryCodeConfigWait = 3 * time.Second
	toggleAirplaneModeWait    = 2 * time.Second
	phFlagWriteWait           = 3 * time.Second
	wifiDisconnectionDelay    = 3 * time.Second
	adbRetryWait              = 2 * time.Second
	gmsAutoUpdateToggleWait   = 2 * time.Second
)

// DefaultLogTags are the tags for which verbose logging is enabled before
// Nearby tests run.
var DefaultLogTags = []string{
	"Nearby",
	"NearbyMessages",
	"NearbyDiscovery",
	"NearbyConnections",
	"NearbyMediums",
	"NearbySetup",
}

// Runner is the shell-execution capability of a device under test.
// *adb.Device satisfies it; tests substitute a fake.
type Runner interface {
	Shell(ctx context.Context, args ...string) (string, error)
}

// DeviceSetup configures a single device. It carries the tri-state
// flag-read-support field, so a device on which the flag store cannot be
// inspected is only probed once.
//
// DeviceSetup is not safe for concurrent use; test runners drive one device
// from one goroutine.
type DeviceSetup struct {
	r           Runner
	flagSupport flagSupport

	// Delays are fields so tests can shorten them.
	retryWait          time.Duration
	flagWriteWait      time.Duration
	airplaneModeWait   time.Duration
	countryCodeWait    time.Duration
	wifiDisconnectWait time.Duration
}

// New returns a DeviceSetup for the given device shell.
func New(r Runner) *DeviceSetup {
	return &DeviceSetup{
		r:                  r,
		retryWait:          adbRetryWait,
		flagWriteWait:      phFlagWriteWait,
		airplaneModeWait:   toggleAirplaneModeWait,
		countryCodeWait:    wifiCountryCodeConfigWait,
		wifiDisconnectWait: wifiDisconnectionDelay,
	}
}

// sleep pauses for the given duration, honoring context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runWithRetry runs op; on failure it sleeps a fixed delay and retries
// exactly once. The second failure propagates to the caller.
func (s *DeviceSetup) runWithRetry(ctx context.Context, what string, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil {
		return nil
	}
	zerolog.Ctx(ctx).Warn().Err(err).Msgf("Failed to %s on device %v, try again", what, s.r)
	if err := sleep(ctx, s.retryWait); err != nil {
		return err
	}
	return op(ctx)
}

// isRooted reports whether the device shell runs as root.
func (s *DeviceSetup) isRooted(ctx context.Context) bool {
	out, err := s.r.Shell(ctx, "id", "-u")
	return err == nil && out == "0"
}

// SetCountryCode sets the Wi-Fi and telephony country code.
//
// When the country code is EU or JP the set of available 5GHz channels
// shrinks, and some phones cannot use Wi-Fi Direct or hotspot on 5GHz at
// all. Tests set the country code to cover those configurations.
func (s *DeviceSetup) SetCountryCode(ctx context.Context, countryCode string) error {
	return s.runWithRetry(ctx, "set country code", func(ctx context.Context) error {
		return s.doSetCountryCode(ctx, countryCode)
	})
}

func (s *DeviceSetup) doSetCountryCode(ctx context.Context, countryCode string) error {
	log := zerolog.Ctx(ctx)
	if !s.isRooted(ctx) {
		log.Info().Msgf("Skipped setting wifi country code on device %v because we do not set country code on an unrooted phone", s.r)
		return nil
	}

	log.Info().Msgf("Set Wi-Fi and Telephony country code to %s", countryCode)
	if _, err := s.r.Shell(ctx, "cmd", "wifi", "set-wifi-enabled", "disabled"); err != nil {
		return err
	}
	if err := sleep(ctx, s.countryCodeWait); err != nil {
		return err
	}
	if _, err := s.r.Shell(ctx,
		"am", "broadcast", "-a", "com.android.internal.telephony.action.COUNTRY_OVERRIDE",
		"--es", "country", countryCode); err != nil {
		return err
	}
	if _, err := s.r.Shell(ctx, "cmd", "wifi", "force-country-code", "enabled", countryCode); err != nil {
		return err
	}
	if err := s.doEnableAirplaneMode(ctx); err != nil {
		return err
	}
	if err := sleep(ctx, s.countryCodeWait); err != nil {
		return err
	}
	if err := s.doDisableAirplaneMode(ctx); err != nil {
		return err
	}
	if _, err := s.r.Shell(ctx, "cmd", "wifi", "set-wifi-enabled", "enabled"); err != nil {
		return err
	}
	telephonyCountryCode, err := s.r.Shell(ctx, "dumpsys wifi | grep mTelephonyCountryCode")
	if err != nil {
		return err
	}
	log.Info().Msgf("Telephony country code: %s", telephonyCountryCode)
	return nil
}

// EnableAirplaneMode enables airplane mode, retrying once on a transient
// adb failure.
func (s *DeviceSetup) EnableAirplaneMode(ctx context.Context) error {
	return s.runWithRetry(ctx, "enable airplane mode", s.doEnableAirplaneMode)
}

func (s *DeviceSetup) doEnableAirplaneMode(ctx context.Context) error {
	return s.setAirplaneMode(ctx, true)
}

// DisableAirplaneMode disables airplane mode, retrying once on a transient
// adb failure.
func (s *DeviceSetup) DisableAirplaneMode(ctx context.Context) error {
	return s.runWithRetry(ctx, "disable airplane mode", s.doDisableAirplaneMode)
}

func (s *DeviceSetup) doDisableAirplaneMode(ctx context.Context) error {
	return s.setAirplaneMode(ctx, false)
}

// setAirplaneMode drives the radios directly. Writing the global setting and
// broadcasting the intent requires root; the svc commands work everywhere.
func (s *DeviceSetup) setAirplaneMode(ctx context.Context, enabled bool) error {
	radioState := "disable"
	settingValue := "1"
	broadcastState := "true"
	if !enabled {
		radioState = "enable"
		settingValue = "0"
		broadcastState = "false"
	}
	if s.isRooted(ctx) {
		if _, err := s.r.Shell(ctx, "settings", "put", "global", "airplane_mode_on", settingValue); err != nil {
			return err
		}
		if _, err := s.r.Shell(ctx,
			"am", "broadcast", "-a", "android.intent.action.AIRPLANE_MODE",
			"--ez", "state", broadcastState); err != nil {
			return err
		}
	}
	if _, err := s.r.Shell(ctx, "svc", "wifi", radioState); err != nil {
		return err
	}
	if _, err := s.r.Shell(ctx, "svc", "bluetooth", radioState); err != nil {
		return err
	}
	return sleep(ctx, s.airplaneModeWait)
}

// ToggleAirplaneMode turns airplane mode on and back off.
func (s *DeviceSetup) ToggleAirplaneMode(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Turn on airplane mode")
	if err := s.EnableAirplaneMode(ctx); err != nil {
		return err
	}
	log.Info().Msg("Turn off airplane mode")
	return s.DisableAirplaneMode(ctx)
}

// EnableLogs enables verbose logging for the given tags, or for
// DefaultLogTags if none are given.
func (s *DeviceSetup) EnableLogs(ctx context.Context, tags ...string) error {
	zerolog.Ctx(ctx).Info().Msg("Enable Nearby loggings")
	if len(tags) == 0 {
		tags = DefaultLogTags
	}
	for _, tag := range tags {
		if _, err := s.r.Shell(ctx, "setprop", fmt.Sprintf("log.tag.%s", tag), "VERBOSE"); err != nil {
			return errors.Wrapf(err, "failed to enable verbose logging for tag %v", tag)
		}
	}
	return nil
}

// GrantManageExternalStoragePermission grants MANAGE_EXTERNAL_STORAGE to the
// given package, retrying once on a transient adb failure.
//
// The permission is not granted by the -g option of adb install. The appops
// command and MANAGE_EXTERNAL_STORAGE are only available on API 30+; on
// older builds this is a no-op. The grant resets to default after reboot
// unless "Allow management of all files" was granted through the system UI.
func (s *DeviceSetup) GrantManageExternalStoragePermission(ctx context.Context, packageName string) error {
	return s.runWithRetry(ctx, "grant MANAGE_EXTERNAL_STORAGE permission", func(ctx context.Context) error {
		return s.doGrantManageExternalStoragePermission(ctx, packageName)
	})
}

func (s *DeviceSetup) doGrantManageExternalStoragePermission(ctx context.Context, packageName string) error {
	out, err := s.r.Shell(ctx, "getprop", "ro.build.version.sdk")
	if err != nil {
		return err
	}
	sdk, err := strconv.Atoi(out)
	if err != nil {
		return errors.Wrapf(err, "failed to parse SDK version %q", out)
	}
	if sdk < 30 {
		return nil
	}
	zerolog.Ctx(ctx).Info().Msgf("Grant MANAGE_EXTERNAL_STORAGE permission on device %v", s.r)
	if _, err := s.r.Shell(ctx, "appops", "set", "--uid", packageName, "MANAGE_EXTERNAL_STORAGE", "allow"); err != nil {
		// The grant is best-effort; some builds reject the appops write.
		zerolog.Ctx(ctx).Info().Err(err).Msg("Failed to grant MANAGE_EXTERNAL_STORAGE permission")
	}
	return nil
}

// DumpGMSVersion returns the GMS Core version codes reported by dumpsys,
// keyed for test result properties. It retries once on a transient failure.
func (s *DeviceSetup) DumpGMSVersion(ctx context.Context) (map[string]string, error) {
	var out string
	err := s.runWithRetry(ctx, "dump GMS version", func(ctx context.Context) error {
		var err error
		out, err = s.r.Shell(ctx, `dumpsys package com.google.android.gms | grep "versionCode="`)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to dump GMS version")
	}
	return map[string]string{fmt.Sprintf("GMS core version on %v", s.r): out}, nil
}

// Hardware returns the device hardware identifier.
func (s *DeviceSetup) Hardware(ctx context.Context) (string, error) {
	return s.r.Shell(ctx, "getprop", "ro.hardware")
}

// DisableGmsAutoUpdates disables Play Store auto-updates so a test-pinned
// GMS Core version is not replaced mid-run. Best effort on unrooted devices.
func (s *DeviceSetup) DisableGmsAutoUpdates(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	if !s.isRooted(ctx) {
		log.Warn().Msg("You should disable the play store auto updates manually on an unrooted device, otherwise the test may be broken unexpectedly")
	}
	log.Info().Msg("Try to disable GMS Auto Updates")
	if _, err := s.r.Shell(ctx, "pm", "disable-user", "--user", "0", "com.android.vending"); err != nil {
		return errors.Wrap(err, "failed to disable GMS auto updates")
	}
	return sleep(ctx, gmsAutoUpdateToggleWait)
}

// EnableGmsAutoUpdates re-enables Play Store auto-updates after the test.
func (s *DeviceSetup) EnableGmsAutoUpdates(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	if !s.isRooted(ctx) {
		log.Warn().Msg("You may enable the play store auto updates manually on an unrooted device after test")
	}
	log.Info().Msg("Try to enable GMS Auto Updates")
	if _, err := s.r.Shell(ctx, "pm", "enable", "com.android.vending"); err != nil {
		return errors.Wrap(err, "failed to enable GMS auto updates")
	}
	return sleep(ctx, gmsAutoUpdateToggleWait)
}

// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package callutils drives phone, bluetooth and SMS UI flows on an IVI head
// unit through the device automation snippet. It provides generic call
// sequences; specific scenario steps are composed by the calling tests.
package callutils

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/automotive-tests/connutils/adb"
)

// RPC is the remote-procedure surface of the device automation snippet
// consumed by CallUtils. *snippet.Client satisfies it.
type RPC interface {
	CallVoid(ctx context.Context, method string, args ...interface{}) error
	CallString(ctx context.Context, method string, args ...interface{}) (string, error)
	CallBool(ctx context.Context, method string, args ...interface{}) (bool, error)
	CallStrings(ctx context.Context, method string, args ...interface{}) ([]string, error)
}

// CallUtils holds the automation handles for one head unit. It keeps no
// other state; every method issues a single remote call.
type CallUtils struct {
	rpc    RPC
	device *adb.Device
}

// New returns a CallUtils driving the given snippet RPC connection.
// device may be nil if no adb-level helpers are needed.
func New(rpc RPC, device *adb.Device) *CallUtils {
	return &CallUtils{rpc: rpc, device: device}
}

var nonDigitRE = regexp.MustCompile(`\D`)

// stripNonDigits removes everything but digits from a phone number so that
// formatted and raw numbers compare equal.
func stripNonDigits(s string) string {
	return nonDigitRE.ReplaceAllString(s, "")
}

// WaitWithLog sleeps for the given duration, logging it for debugging.
func (c *CallUtils) WaitWithLog(ctx context.Context, d time.Duration) error {
	zerolog.Ctx(ctx).Info().Msgf("Sleep for %v", d)
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenAppGrid opens the app grid.
func (c *CallUtils) OpenAppGrid(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening app grid")
	return c.rpc.CallVoid(ctx, "openAppGrid")
}

// PressHomeScreen presses the Home screen button on the status bar to return
// the device to the home screen.
func (c *CallUtils) PressHomeScreen(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Pressing home screen button")
	return c.rpc.CallVoid(ctx, "pressHomeScreen")
}

// PressHome presses the Home button to go back to the home page.
func (c *CallUtils) PressHome(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Pressing HOME")
	return c.rpc.CallVoid(ctx, "pressHome")
}

// UpdateDeviceTimezone sets the device timezone and verifies it took effect.
func (c *CallUtils) UpdateDeviceTimezone(ctx context.Context, timezone string) error {
	zerolog.Ctx(ctx).Info().Msgf("Update the device timezone to %s", timezone)
	if err := c.rpc.CallVoid(ctx, "setTimeZone", timezone); err != nil {
		return err
	}
	actual, err := c.rpc.CallString(ctx, "getTimeZone")
	if err != nil {
		return err
	}
	return verifyContains(ctx, "timezone", timezone, actual)
}

// EnableDrivingMode puts the head unit into driving mode.
func (c *CallUtils) EnableDrivingMode(ctx context.Context) error {
	return c.rpc.CallVoid(ctx, "enableDrivingMode")
}

// DisableDrivingMode takes the head unit out of driving mode.
func (c *CallUtils) DisableDrivingMode(ctx context.Context) error {
	return c.rpc.CallVoid(ctx, "disableDrivingMode")
}

// ExecuteShellOnDevice runs a shell command on the given device. The target
// is passed explicitly since call sequences drive both the head unit and the
// paired phone.
func (c *CallUtils) ExecuteShellOnDevice(ctx context.Context, target *adb.Device, cmd string) (string, error) {
	zerolog.Ctx(ctx).Info().Msgf("Executing shell command: <%s> on device <%s>", cmd, target.Serial)
	return target.Shell(ctx, cmd)
}

// PressEnterOnDevice presses ENTER on the given device.
func (c *CallUtils) PressEnterOnDevice(ctx context.Context, target *adb.Device) error {
	zerolog.Ctx(ctx).Info().Msg("Pressing ENTER on device")
	if err := target.PressKeyCode(ctx, "KEYCODE_ENTER"); err != nil {
		return err
	}
	return c.WaitWithLog(ctx, time.Second)
}

// EndCallUsingADB ends the ongoing call on the given device through a key
// event rather than the UI.
func (c *CallUtils) EndCallUsingADB(ctx context.Context, target *adb.Device) error {
	return target.PressKeyCode(ctx, "KEYCODE_ENDCALL")
}

// PressPhoneHomeIcon presses the home icon on the paired phone.
func (c *CallUtils) PressPhoneHomeIcon(ctx context.Context, target *adb.Device) error {
	return target.PressKeyCode(ctx, "KEYCODE_HOME")
}

// OpenNotificationOnPhone expands the notification shade on the paired phone.
func (c *CallUtils) OpenNotificationOnPhone(ctx context.Context, target *adb.Device) error {
	zerolog.Ctx(ctx).Debug().Msg("Open notifications on phone")
	_, err := c.ExecuteShellOnDevice(ctx, target, "cmd statusbar expand-notifications")
	return err
}

// RebootDevice reboots the given device.
func (c *CallUtils) RebootDevice(ctx context.Context, target *adb.Device) error {
	return target.Reboot(ctx)
}

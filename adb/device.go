// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package adb provides a handle to an Android device attached over adb and
// wrappers for the adb subcommands the connectivity tests rely on.
package adb

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/automotive-tests/connutils/testexec"
)

// Device holds the resources required to communicate with a specific Android
// device attached over adb. It is supplied by the caller; its lifetime is
// managed outside this package.
type Device struct {
	// Serial is the adb serial number identifying the device.
	Serial string
}

// String returns the device serial so a Device can be used directly in logs.
func (d *Device) String() string {
	return d.Serial
}

// Devices returns the list of currently known adb devices in the "device"
// (fully available) state.
func Devices(ctx context.Context) ([]*Device, error) {
	out, err := testexec.CommandContext(ctx, "adb", "devices").Output(testexec.DumpLogOnError)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list adb devices")
	}
	var devices []*Device
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[1] != "device" {
			continue
		}
		devices = append(devices, &Device{Serial: fields[0]})
	}
	return devices, nil
}

// WaitForDevice waits for an adb device matching pred to become available.
func WaitForDevice(ctx context.Context, pred func(*Device) bool, timeout time.Duration) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		devices, err := Devices(ctx)
		if err == nil {
			for _, d := range devices {
				if pred(d) {
					return d, nil
				}
			}
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "timed out waiting for adb device")
		}
	}
}

// Command returns a command to run an adb subcommand against this device.
func (d *Device) Command(ctx context.Context, args ...string) *testexec.Cmd {
	return testexec.CommandContext(ctx, "adb", append([]string{"-s", d.Serial}, args...)...)
}

// ShellCommand returns a command to run a shell command on the device.
func (d *Device) ShellCommand(ctx context.Context, args ...string) *testexec.Cmd {
	return d.Command(ctx, append([]string{"shell"}, args...)...)
}

// Shell runs a shell command on the device and returns its trimmed output.
func (d *Device) Shell(ctx context.Context, args ...string) (string, error) {
	out, err := d.ShellCommand(ctx, args...).Output(testexec.DumpLogOnError)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Root restarts adbd on the device with root permissions.
// It only succeeds on rooted (userdebug) builds.
func (d *Device) Root(ctx context.Context) error {
	if err := d.Command(ctx, "root").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to restart adbd as root")
	}
	return d.Command(ctx, "wait-for-device").Run(testexec.DumpLogOnError)
}

// IsRooted reports whether the adb shell runs as root on the device.
func (d *Device) IsRooted(ctx context.Context) bool {
	out, err := d.Shell(ctx, "id", "-u")
	return err == nil && out == "0"
}

// GetProp returns the value of the specified Android system property.
func (d *Device) GetProp(ctx context.Context, name string) (string, error) {
	out, err := d.Shell(ctx, "getprop", name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get property %v", name)
	}
	return out, nil
}

// SDKVersion returns the Android SDK version of the device's build.
func (d *Device) SDKVersion(ctx context.Context) (int, error) {
	out, err := d.GetProp(ctx, "ro.build.version.sdk")
	if err != nil {
		return 0, err
	}
	sdk, err := strconv.Atoi(out)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse SDK version %q", out)
	}
	return sdk, nil
}

// Install installs an APK file on the device, replacing any existing package,
// granting all runtime permissions and allowing test packages.
func (d *Device) Install(ctx context.Context, apkPath string) error {
	out, err := d.Command(ctx, "install", "-r", "-g", "-t", apkPath).Output(testexec.DumpLogOnError)
	if err != nil {
		return errors.Wrapf(err, "failed to install %v", apkPath)
	}
	// "Success" is the only possible positive result from pm.
	if !regexp.MustCompile(`(?m)^Success`).Match(out) {
		return errors.Errorf("failed to install %v %q", apkPath, string(out))
	}
	return nil
}

// InstalledPackages returns the set of currently-installed packages.
// This operation is slow, so unnecessary calls should be avoided.
func (d *Device) InstalledPackages(ctx context.Context) (map[string]struct{}, error) {
	out, err := d.ShellCommand(ctx, "pm", "list", "packages").Output(testexec.DumpLogOnError)
	if err != nil {
		return nil, errors.Wrap(err, "listing packages failed")
	}
	pkgs := make(map[string]struct{})
	for _, pkg := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		// pm list packages prepends "package:" to installed packages. Not needed.
		pkgs[strings.TrimPrefix(pkg, "package:")] = struct{}{}
	}
	return pkgs, nil
}

// Push copies a file from the host to the device.
func (d *Device) Push(ctx context.Context, src, dst string) error {
	if err := d.Command(ctx, "push", src, dst).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to push %v to %v", src, dst)
	}
	return nil
}

// ForwardTCP forwards the device TCP port to an automatically allocated host
// port and returns the host port number.
func (d *Device) ForwardTCP(ctx context.Context, androidPort int) (int, error) {
	out, err := d.Command(ctx, "forward", "tcp:0", "tcp:"+strconv.Itoa(androidPort)).Output(testexec.DumpLogOnError)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to forward device port %d", androidPort)
	}
	hostPort, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse forwarded port from %q", string(out))
	}
	return hostPort, nil
}

// PressKeyCode sends a key event to the device.
func (d *Device) PressKeyCode(ctx context.Context, keycode string) error {
	if err := d.ShellCommand(ctx, "input", "keyevent", keycode).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to press key %v", keycode)
	}
	return nil
}

// Reboot reboots the device. It does not wait for the device to come back.
func (d *Device) Reboot(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msgf("Rebooting device %v", d.Serial)
	if err := d.Command(ctx, "reboot").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to reboot device")
	}
	return nil
}

// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package callutils

import (
	"context"

	"github.com/rs/zerolog"
)

// OpenBluetoothSettings navigates to the bluetooth settings page via the
// status bar. Assumes the home screen is showing.
func (c *CallUtils) OpenBluetoothSettings(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening bluetooth settings (via the Status Bar)")
	return c.rpc.CallVoid(ctx, "openBluetoothSettings")
}

// OpenBluetoothPalette opens the bluetooth palette.
func (c *CallUtils) OpenBluetoothPalette(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Open Bluetooth Palette")
	return c.rpc.CallVoid(ctx, "openBluetoothPalette")
}

// OpenBluetoothMediaApp opens the bluetooth audio app.
func (c *CallUtils) OpenBluetoothMediaApp(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Open Bluetooth Audio app")
	return c.rpc.CallVoid(ctx, "openBluetoothMediaApp")
}

// DeviceDisplaysConnected checks that the open bluetooth connection settings
// page shows the device as connected.
func (c *CallUtils) DeviceDisplaysConnected(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Checking whether device is connected")
	return c.rpc.CallVoid(ctx, "deviceIsConnected")
}

// ClickPhoneButton clicks the phone button.
func (c *CallUtils) ClickPhoneButton(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Click phone button")
	return c.rpc.CallVoid(ctx, "clickPhoneButton")
}

// ClickBluetoothButton clicks the bluetooth button.
func (c *CallUtils) ClickBluetoothButton(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Click Bluetooth Button")
	return c.rpc.CallVoid(ctx, "clickBluetoothButton")
}

// PressBluetoothToggleOnDevice presses the bluetooth toggle on the named
// paired device entry.
func (c *CallUtils) PressBluetoothToggleOnDevice(ctx context.Context, deviceName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Attempting to press the bluetooth toggle on device: <%s>", deviceName)
	return c.rpc.CallVoid(ctx, "pressBluetoothToggleOnDevice", deviceName)
}

// PressPhoneToggleOnDevice presses the phone toggle on the named paired
// device entry.
func (c *CallUtils) PressPhoneToggleOnDevice(ctx context.Context, deviceName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Attempting to press the phone toggle on device: <%s>", deviceName)
	return c.rpc.CallVoid(ctx, "pressPhoneToggleOnDevice", deviceName)
}

// PressMediaToggleOnDevice presses the media toggle on the named paired
// device entry.
func (c *CallUtils) PressMediaToggleOnDevice(ctx context.Context, deviceName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Attempting to press the media toggle on device: <%s>", deviceName)
	return c.rpc.CallVoid(ctx, "pressMediaToggleOnDevice", deviceName)
}

// PressDeviceEntryOnListOfPairedDevices presses the named device entry in
// the bluetooth settings list.
func (c *CallUtils) PressDeviceEntryOnListOfPairedDevices(ctx context.Context, deviceName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Attempting to press the device entry on device: %s", deviceName)
	return c.rpc.CallVoid(ctx, "pressDeviceInBluetoothSettings", deviceName)
}

// PressForget presses Forget on the open bluetooth connection settings page.
func (c *CallUtils) PressForget(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Attempting to press 'Forget'")
	return c.rpc.CallVoid(ctx, "pressForget")
}

// IsBluetoothConnected reports the bluetooth connected status.
func (c *CallUtils) IsBluetoothConnected(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Bluetooth Connected Status")
	return c.rpc.CallBool(ctx, "isBluetoothConnected")
}

// HasBluetoothButton reports whether the bluetooth palette has the
// bluetooth button.
func (c *CallUtils) HasBluetoothButton(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Has Bluetooth Button")
	return c.rpc.CallBool(ctx, "hasBluetoothButton")
}

// HasBluetoothPalettePhoneButton reports whether the bluetooth palette has
// the phone button.
func (c *CallUtils) HasBluetoothPalettePhoneButton(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Has Phone Button")
	return c.rpc.CallBool(ctx, "hasBluetoothPalettePhoneButton")
}

// HasBluetoothPaletteMediaButton reports whether the bluetooth palette has
// the media button.
func (c *CallUtils) HasBluetoothPaletteMediaButton(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Has Media Button")
	return c.rpc.CallBool(ctx, "hasBluetoothPaletteMediaButton")
}

// IsBluetoothButtonEnabled reports whether the bluetooth button is enabled.
func (c *CallUtils) IsBluetoothButtonEnabled(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Is Bluetooth Button Enabled")
	return c.rpc.CallBool(ctx, "isBluetoothButtonEnabled")
}

// IsBluetoothPhoneButtonEnabled reports whether the bluetooth palette phone
// button is enabled.
func (c *CallUtils) IsBluetoothPhoneButtonEnabled(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Is Bluetooth Palette Phone Button Enabled")
	return c.rpc.CallBool(ctx, "isBluetoothPhoneButtonEnabled")
}

// IsBluetoothMediaButtonEnabled reports whether the bluetooth palette media
// button is enabled.
func (c *CallUtils) IsBluetoothMediaButtonEnabled(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Is Bluetooth Palette Media Button Enabled")
	return c.rpc.CallBool(ctx, "isBluetoothMediaButtonEnabled")
}

// ClickOnBluetoothPaletteMediaButton clicks the bluetooth palette media
// button.
func (c *CallUtils) ClickOnBluetoothPaletteMediaButton(ctx context.Context) error {
	if err := c.rpc.CallVoid(ctx, "clickOnBluetoothPaletteMediaButton"); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("Clicked on bluetooth palette media button")
	return nil
}

// IsBluetoothAudioDisconnectedLabelVisible reports whether the
// "Bluetooth Audio disconnected" label is present.
func (c *CallUtils) IsBluetoothAudioDisconnectedLabelVisible(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checking is <Bluetooth Audio disconnected> label present")
	visible, err := c.rpc.CallBool(ctx, "isBluetoothAudioDisconnectedLabelVisible")
	if err != nil {
		return false, err
	}
	zerolog.Ctx(ctx).Info().Msgf("<Bluetooth Audio disconnected> label is present: %t", visible)
	return visible, nil
}

// ClickCancelOnBluetoothAudioPage clicks the Cancel label on the bluetooth
// audio page.
func (c *CallUtils) ClickCancelOnBluetoothAudioPage(ctx context.Context) error {
	if err := c.rpc.CallVoid(ctx, "cancelBluetoothAudioConncetion"); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("Clicked on <Cancel> label present on bluetooth Audio page")
	return nil
}

// IsBluetoothHFPErrorDisplayed reports whether the bluetooth HFP error is
// displayed, as when bluetooth is disconnected.
func (c *CallUtils) IsBluetoothHFPErrorDisplayed(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checks if bluetooth hfp error is displayed")
	return c.rpc.CallBool(ctx, "isBluetoothHfpErrorDisplayed")
}

// VerifyDeviceName checks that the paired device name shown matches the
// actual device.
func (c *CallUtils) VerifyDeviceName(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Verify Device Name")
	return c.rpc.CallBool(ctx, "verifyDeviceName")
}

// GetDeviceSummary returns the device summary. Assumes the device summary
// page is open.
func (c *CallUtils) GetDeviceSummary(ctx context.Context) (string, error) {
	return c.rpc.CallString(ctx, "getDeviceSummary")
}

// ValidateThreePreferenceButtons checks the bluetooth, phone and media
// preference buttons of the listed device.
//
// If bluetooth is enabled, all three buttons should be enabled and the
// bluetooth button checked. If disabled, the bluetooth button should be
// unchecked and the phone and media buttons disabled.
func (c *CallUtils) ValidateThreePreferenceButtons(ctx context.Context, bluetoothEnabled bool) (bool, error) {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Checking the three Preference buttons on the listed device")

	if checked, err := c.rpc.CallBool(ctx, "isBluetoothPreferenceChecked"); err != nil {
		return false, err
	} else if checked != bluetoothEnabled {
		log.Info().Msgf("Bluetooth preference check status does not match expected status: %t", bluetoothEnabled)
		return false, nil
	}

	if enabled, err := c.rpc.CallBool(ctx, "isPhonePreferenceEnabled"); err != nil {
		return false, err
	} else if enabled != bluetoothEnabled {
		log.Info().Msgf("Phone preference does not match expected status: %t", bluetoothEnabled)
		return false, nil
	}

	if enabled, err := c.rpc.CallBool(ctx, "isMediaPreferenceEnabled"); err != nil {
		return false, err
	} else if enabled != bluetoothEnabled {
		log.Info().Msgf("Media preference does not match expected status: %t", bluetoothEnabled)
		return false, nil
	}

	return true, nil
}

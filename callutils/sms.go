// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package callutils

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/automotive-tests/connutils/adb"
)

// OpenSMSApp opens the SMS app.
func (c *CallUtils) OpenSMSApp(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening sms app")
	return c.rpc.CallVoid(ctx, "openSmsApp")
}

// VerifySMSAppUnreadMessage checks the unread message badge in the SMS app
// against the expected state.
func (c *CallUtils) VerifySMSAppUnreadMessage(ctx context.Context, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Verify Unread Message on SMS app")
	actual, err := c.rpc.CallBool(ctx, "isUnreadSmsDisplayed")
	if err != nil {
		return err
	}
	return verifyBool(ctx, "SMS unread message badge", expected, actual)
}

// VerifySMSPreviewText checks whether the given preview text is displayed.
func (c *CallUtils) VerifySMSPreviewText(ctx context.Context, expected bool, text string) error {
	zerolog.Ctx(ctx).Info().Msg("Verify SMS Preview Text")
	actual, err := c.rpc.CallBool(ctx, "isSmsPreviewTextDisplayed", text)
	if err != nil {
		return err
	}
	return verifyBool(ctx, "SMS preview text", expected, actual)
}

// VerifySMSPreviewTimestamp checks whether the SMS preview timestamp is
// displayed.
func (c *CallUtils) VerifySMSPreviewTimestamp(ctx context.Context, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Verify SMS Preview TimeStamp")
	actual, err := c.rpc.CallBool(ctx, "isSmsTimeStampDisplayed")
	if err != nil {
		return err
	}
	return verifyBool(ctx, "SMS preview timestamp", expected, actual)
}

// VerifySMSNoMessagesDisplayed checks whether the no-messages placeholder is
// displayed.
func (c *CallUtils) VerifySMSNoMessagesDisplayed(ctx context.Context, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Verify No Msg displayed")
	actual, err := c.rpc.CallBool(ctx, "isNoMessagesDisplayed")
	if err != nil {
		return err
	}
	return verifyBool(ctx, "SMS no messages placeholder", expected, actual)
}

// IsSMSBluetoothDisconnectedLabelVisible reports whether the "Bluetooth SMS
// disconnected" label is present.
func (c *CallUtils) IsSMSBluetoothDisconnectedLabelVisible(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checking is <Bluetooth SMS disconnected> label present")
	visible, err := c.rpc.CallBool(ctx, "isSmsBluetoothErrorDisplayed")
	if err != nil {
		return false, err
	}
	zerolog.Ctx(ctx).Info().Msgf("<Bluetooth SMS disconnected> label is present: %t", visible)
	return visible, nil
}

// TapToReadAloud taps the received text message so the assistant reads it.
func (c *CallUtils) TapToReadAloud(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Click on the text >>> tap to read aloud")
	return c.rpc.CallVoid(ctx, "tapToReadAloud")
}

// IsAssistantSMSTranscriptionPlateDisplayed reports whether the assistant
// transcription plate opened after tapping the SMS.
func (c *CallUtils) IsAssistantSMSTranscriptionPlateDisplayed(ctx context.Context) (bool, error) {
	visible, err := c.rpc.CallBool(ctx, "isAssistantSMSTranscriptionPlateDisplayed")
	if err != nil {
		return false, err
	}
	if visible {
		zerolog.Ctx(ctx).Info().Msg("Assistant SMS Transcription plate has opened upon tapping the SMS")
	}
	return visible, nil
}

// ClearSMSApp deletes the messaging database and clears the messaging app
// data on the given device.
func (c *CallUtils) ClearSMSApp(ctx context.Context, target *adb.Device) error {
	zerolog.Ctx(ctx).Debug().Msg("Clearing the sms app")
	if _, err := c.ExecuteShellOnDevice(ctx, target, "rm -f /data/data/com.android.messaging/databases/bugle_db"); err != nil {
		return err
	}
	_, err := c.ExecuteShellOnDevice(ctx, target, "pm clear com.android.messaging")
	return err
}

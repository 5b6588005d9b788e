// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package callutils

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// OpenPhoneApp opens the phone app.
func (c *CallUtils) OpenPhoneApp(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening phone app")
	return c.rpc.CallVoid(ctx, "openPhoneApp")
}

// OpenPhoneAppFromHome opens the phone app from the home screen card.
func (c *CallUtils) OpenPhoneAppFromHome(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Open Phone from Home Screen card")
	return c.rpc.CallVoid(ctx, "openPhoneAppFromHome")
}

// OpenDialPad opens the dial pad from the dialer main screen.
func (c *CallUtils) OpenDialPad(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening the dialpad")
	return c.rpc.CallVoid(ctx, "openDialPad")
}

// OpenDialerSettings opens the dialer settings.
func (c *CallUtils) OpenDialerSettings(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening the dialer settings")
	return c.rpc.CallVoid(ctx, "openDialerSettings")
}

// OpenCallHistory opens the call history.
func (c *CallUtils) OpenCallHistory(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Open call history")
	return c.rpc.CallVoid(ctx, "openCallHistory")
}

// DialANumber dials the given phone number on the dial pad.
func (c *CallUtils) DialANumber(ctx context.Context, number string) error {
	zerolog.Ctx(ctx).Info().Msgf("Dial phone number <%s>", number)
	return c.rpc.CallVoid(ctx, "dialANumber", number)
}

// MakeCall places the call for the currently dialed number.
func (c *CallUtils) MakeCall(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Make a call")
	return c.rpc.CallVoid(ctx, "makeCall")
}

// EndCall ends the call. The snippet raises an error if no call is ongoing.
func (c *CallUtils) EndCall(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("End the call")
	return c.rpc.CallVoid(ctx, "endCall")
}

// CallMostRecentHistory places a call to the most recent entry in history.
func (c *CallUtils) CallMostRecentHistory(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Calling most recent call in history")
	return c.rpc.CallVoid(ctx, "callMostRecentHistory")
}

// DeleteDialedNumber deletes the dialed number on the dial pad.
func (c *CallUtils) DeleteDialedNumber(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Deleting dialed number on Dial Pad")
	return c.rpc.CallVoid(ctx, "deleteDialedNumber")
}

// PressDialerButtonOnPhoneCard presses the dialer button on the phone card.
func (c *CallUtils) PressDialerButtonOnPhoneCard(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Attempting to press the dialer button on the phone card")
	return c.rpc.CallVoid(ctx, "pressDialerButtonOnPhoneCard")
}

// PressActiveCallToggle presses the active call toggle.
func (c *CallUtils) PressActiveCallToggle(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Pressing the Active Call toggle")
	return c.rpc.CallVoid(ctx, "pressActiveCallToggle")
}

// GetDialingNumber returns the number of the in-progress dial.
func (c *CallUtils) GetDialingNumber(ctx context.Context) (string, error) {
	return c.rpc.CallString(ctx, "getDialingNumber")
}

// GetUserPhoneNumber returns the phone number of the user profile.
func (c *CallUtils) GetUserPhoneNumber(ctx context.Context) (string, error) {
	return c.rpc.CallString(ctx, "getUserProfilePhoneNumber")
}

// GetDialInNumber returns the number currently entered on the dial pad.
func (c *CallUtils) GetDialInNumber(ctx context.Context) (string, error) {
	return c.rpc.CallString(ctx, "getNumberInDialPad")
}

// GetRecentCallHistory returns the latest call from history.
func (c *CallUtils) GetRecentCallHistory(ctx context.Context) (string, error) {
	recent, err := c.rpc.CallString(ctx, "getRecentCallHistory")
	if err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().Msgf("The latest call from history: <%s>", recent)
	return recent, nil
}

// VerifyDialingNumber checks that the number being dialed matches expected,
// comparing digits only.
func (c *CallUtils) VerifyDialingNumber(ctx context.Context, expected string) error {
	actual, err := c.GetDialingNumber(ctx)
	if err != nil {
		return err
	}
	return verifyEqual(ctx, "dialing number", expected, stripNonDigits(actual))
}

// VerifyUserPhoneNumber checks that the user profile phone number matches
// expected, comparing digits only.
func (c *CallUtils) VerifyUserPhoneNumber(ctx context.Context, expected string) error {
	actual, err := c.GetUserPhoneNumber(ctx)
	if err != nil {
		return err
	}
	return verifyEqual(ctx, "user phone number", expected, stripNonDigits(actual))
}

// VerifyLastDialedNumber checks that the most recent history entry matches
// the expected number, comparing digits only.
func (c *CallUtils) VerifyLastDialedNumber(ctx context.Context, expected string) error {
	recent, err := c.GetRecentCallHistory(ctx)
	if err != nil {
		return err
	}
	return verifyEqual(ctx, "last dialed number", expected, stripNonDigits(recent))
}

// VerifyDialedNumberOnDialPad checks the number shown on the dial pad.
func (c *CallUtils) VerifyDialedNumberOnDialPad(ctx context.Context, expected string) error {
	actual, err := c.GetDialInNumber(ctx)
	if err != nil {
		return err
	}
	return verifyEqual(ctx, "number on dial pad", expected, actual)
}

// VerifyContactName checks the contact name shown for the ongoing dial.
func (c *CallUtils) VerifyContactName(ctx context.Context, expected string) error {
	actual, err := c.rpc.CallString(ctx, "getContactName")
	if err != nil {
		return err
	}
	return verifyEqual(ctx, "contact name being called", expected, actual)
}

// VerifyDialerRecentsTab checks that the dialer recents tab is displayed.
func (c *CallUtils) VerifyDialerRecentsTab(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checks if dialer recents tab is displayed")
	return c.rpc.CallBool(ctx, "verifyDialerRecentsTab")
}

// VerifyDialerContactsTab checks that the dialer contacts tab is displayed.
func (c *CallUtils) VerifyDialerContactsTab(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checks if dialer contacts tab is displayed")
	return c.rpc.CallBool(ctx, "verifyDialerContactsTab")
}

// VerifyDialerFavoritesTab checks that the dialer favorites tab is displayed.
func (c *CallUtils) VerifyDialerFavoritesTab(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checks if favorites tab is displayed")
	return c.rpc.CallBool(ctx, "verifyDialerFavoritesTab")
}

// VerifyDialerDialpadTab checks that the dial pad is displayed.
func (c *CallUtils) VerifyDialerDialpadTab(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Checks if dialpad is displayed")
	return c.rpc.CallBool(ctx, "verifyDialerDialpadTab")
}

// IsActiveCallEnabled reports whether the active call view is enabled.
func (c *CallUtils) IsActiveCallEnabled(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Verifying whether active call is enabled")
	return c.rpc.CallBool(ctx, "isActiveCallEnabled")
}

// IsActiveCallOngoingFullScreen reports whether an ongoing call is currently
// showing in full-screen mode.
func (c *CallUtils) IsActiveCallOngoingFullScreen(ctx context.Context) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("Verify whether an ongoing call is currently showing in full-screen mode")
	return c.rpc.CallBool(ctx, "isOngoingCallInFullScreen")
}

// VerifyOngoingCallDisplayedOnHome opens the home screen and checks the
// ongoing call indicator against the expected state.
func (c *CallUtils) VerifyOngoingCallDisplayedOnHome(ctx context.Context, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Open Home screen and verify the ongoing call")
	actual, err := c.rpc.CallBool(ctx, "isOngoingCallDisplayedOnHome")
	if err != nil {
		return err
	}
	return verifyBool(ctx, "Call displayed on home", expected, actual)
}

// VerifyMicrophoneDisplayedOnStatusBar checks the microphone chip on the
// status bar against the expected state.
func (c *CallUtils) VerifyMicrophoneDisplayedOnStatusBar(ctx context.Context, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Verify microphone chip on status bar")
	actual, err := c.rpc.CallBool(ctx, "isMicChipPresentOnStatusBar")
	if err != nil {
		return err
	}
	return verifyBool(ctx, "Microphone chip on status bar", expected, actual)
}

// MuteCall mutes the ongoing call.
func (c *CallUtils) MuteCall(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Muting call")
	return c.rpc.CallVoid(ctx, "muteCall")
}

// UnmuteCall unmutes the ongoing call.
func (c *CallUtils) UnmuteCall(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Unmuting call")
	return c.rpc.CallVoid(ctx, "unmuteCall")
}

// ChangeAudioSourceToPhone routes call audio to the phone.
func (c *CallUtils) ChangeAudioSourceToPhone(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Changing audio source to PHONE")
	return c.rpc.CallVoid(ctx, "changeAudioSourceToPhone")
}

// ChangeAudioSourceToCarSpeakers routes call audio to the car speakers.
func (c *CallUtils) ChangeAudioSourceToCarSpeakers(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Changing audio source to CAR SPEAKERS")
	return c.rpc.CallVoid(ctx, "changeAudioSourceToCarSpeakers")
}

// VerifyAscendingSortingOrder checks that the given list is sorted in
// ascending order.
func (c *CallUtils) VerifyAscendingSortingOrder(ctx context.Context, actual []string) error {
	expected := append([]string(nil), actual...)
	sort.Strings(expected)
	zerolog.Ctx(ctx).Info().Msgf("Expected sorting order: <%v>, Actual sorting order: <%v>", expected, actual)
	for i := range actual {
		if actual[i] != expected[i] {
			return &MismatchError{What: "sorting order", Want: expected[i], Got: actual[i]}
		}
	}
	return nil
}

// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package callutils

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/automotive-tests/connutils/adb"
)

// OpenContacts opens the contacts list.
func (c *CallUtils) OpenContacts(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Opening contacts")
	return c.rpc.CallVoid(ctx, "openContacts")
}

// OpenFirstContactDetails opens the details page for the first contact
// visible in the contact list. Assumes the contacts page is open.
func (c *CallUtils) OpenFirstContactDetails(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Getting details for first contact on the page")
	return c.rpc.CallVoid(ctx, "openFirstContactDetails")
}

// OpenDetailsPage opens the details page of the named contact.
func (c *CallUtils) OpenDetailsPage(ctx context.Context, contactName string) error {
	zerolog.Ctx(ctx).Info().Msg("Open contacts details page")
	return c.rpc.CallVoid(ctx, "openDetailsPage", contactName)
}

// CloseDetailsPage closes the contact details page.
func (c *CallUtils) CloseDetailsPage(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Close contacts details page")
	return c.rpc.CallVoid(ctx, "closeDetailsPage")
}

// GetHomeAddressFromDetails returns the home address of the contact whose
// details are currently being displayed.
func (c *CallUtils) GetHomeAddressFromDetails(ctx context.Context) (string, error) {
	return c.rpc.CallString(ctx, "getHomeAddress")
}

// AddRemoveFavoriteContact toggles the favorite state of the currently open
// contact.
func (c *CallUtils) AddRemoveFavoriteContact(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Add remove favorite contact")
	return c.rpc.CallVoid(ctx, "addRemoveFavoriteContact")
}

// AddFavoritesFromFavoritesTab adds the named contact from the favorites tab.
func (c *CallUtils) AddFavoritesFromFavoritesTab(ctx context.Context, contactName string) error {
	zerolog.Ctx(ctx).Info().Msg("Add favorites from favorites tab")
	return c.rpc.CallVoid(ctx, "addFavoritesFromFavoritesTab", contactName)
}

// VerifyContactInFavorites checks whether the named contact's favorite state
// matches the expectation.
func (c *CallUtils) VerifyContactInFavorites(ctx context.Context, contactName string, expected bool) error {
	zerolog.Ctx(ctx).Info().Msg("Check if contact is in favorites")
	actual, err := c.rpc.CallBool(ctx, "isContactInFavorites", contactName)
	if err != nil {
		return err
	}
	return verifyBool(ctx, "Contact in favorites", expected, actual)
}

// SearchContactsByName enters the given name in the contact search box.
func (c *CallUtils) SearchContactsByName(ctx context.Context, contactName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Searching <%s> in contacts", contactName)
	return c.rpc.CallVoid(ctx, "searchContactsByName", contactName)
}

// PressContactSearchResult presses the contact search result with the given
// first name.
func (c *CallUtils) PressContactSearchResult(ctx context.Context, expectedFirstName string) error {
	zerolog.Ctx(ctx).Info().Msgf("Attempting to press the contact result with name <%s>", expectedFirstName)
	return c.rpc.CallVoid(ctx, "pressContactResult", expectedFirstName)
}

// GetFirstSearchResult returns the first contact search result.
func (c *CallUtils) GetFirstSearchResult(ctx context.Context) (string, error) {
	zerolog.Ctx(ctx).Info().Msg("Getting first search result")
	result, err := c.rpc.CallString(ctx, "getFirstSearchResult")
	if err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().Msgf("Actual first search result: <%s>", result)
	return result, nil
}

// VerifySearchResultsContain checks that the first search result contains
// the expected text.
func (c *CallUtils) VerifySearchResultsContain(ctx context.Context, expected string) error {
	actual, err := c.GetFirstSearchResult(ctx)
	if err != nil {
		return err
	}
	return verifyContains(ctx, "search result", expected, actual)
}

// SortContactsByFirstName sorts the contact list by first name.
func (c *CallUtils) SortContactsByFirstName(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Msg("Sorting contacts by first name")
	return c.rpc.CallVoid(ctx, "sortContactListByFirstName")
}

// GetListOfVisibleContacts returns the names of all visible contacts.
func (c *CallUtils) GetListOfVisibleContacts(ctx context.Context) ([]string, error) {
	zerolog.Ctx(ctx).Info().Msg("Getting list of visible contacts")
	contacts, err := c.rpc.CallStrings(ctx, "getListOfAllContacts")
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Msgf("Actual list of visible contacts: <%v>", contacts)
	return contacts, nil
}

// PushContactsToDevice pushes a VCF contacts file to the given device and
// returns its on-device path. The destination name is randomized so devices
// prepared in parallel do not clobber each other.
func (c *CallUtils) PushContactsToDevice(ctx context.Context, target *adb.Device, localPath string) (string, error) {
	dst := fmt.Sprintf("/sdcard/Download/contacts-%s.vcf", uuid.New().String())
	zerolog.Ctx(ctx).Info().Msgf("Pushing VCF contacts to device %s to destination <%s>", target.Serial, dst)
	if err := target.Push(ctx, localPath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// ImportContactsFromVCFFile pushes a VCF contacts file to the given device
// and imports it into the contacts provider.
func (c *CallUtils) ImportContactsFromVCFFile(ctx context.Context, target *adb.Device, localPath string) error {
	dst, err := c.PushContactsToDevice(ctx, target, localPath)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("Importing contacts from VCF file to device Contacts")
	importCmd := fmt.Sprintf(
		"am start -a android.intent.action.VIEW -t text/x-vcard -d file://%s com.android.contacts", dst)
	_, err = c.ExecuteShellOnDevice(ctx, target, importCmd)
	return err
}

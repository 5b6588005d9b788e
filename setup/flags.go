// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// FlagType is the type tag of a Phenotype feature flag.
type FlagType string

// Flag type tags accepted by the FLAG_OVERRIDE broadcast.
const (
	FlagBool   FlagType = "boolean"
	FlagLong   FlagType = "long"
	FlagString FlagType = "string"
)

// nearbyPackage owns the Nearby Connections/Share flags.
const nearbyPackage = "com.google.android.gms.nearby"

// flagSupport is the tri-state answer to "can the committed flag store be
// inspected on this device". Some devices ship without sqlite3; after the
// inspection fails once (past the retry), it is not attempted again.
type flagSupport int

const (
	flagSupportUnknown flagSupport = iota
	flagSupportSupported
	flagSupportUnsupported
)

// FlagCommitted reports whether the named flag override has been committed
// on the device. Inspection failures are absorbed: the read is retried once
// after a fixed delay, and a repeated failure marks the device unsupported
// and reports the flag as not committed.
func (s *DeviceSetup) FlagCommitted(ctx context.Context, pname, flagName string) bool {
	if s.flagSupport == flagSupportUnsupported {
		return false
	}
	query := fmt.Sprintf(`sqlite3 /data/data/com.google.android.gms/databases/phenotype.db`+
		` "select name, quote(coalesce(intVal, boolVal, floatVal, stringVal, extensionVal))`+
		` from FlagOverrides where committed=1 AND packageName='%s';"`, pname)

	out, err := s.r.Shell(ctx, query)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msgf("Failed to check flag %v on device %v, try again", flagName, s.r)
		if sleepErr := sleep(ctx, s.retryWait); sleepErr != nil {
			return false
		}
		out, err = s.r.Shell(ctx, query)
	}
	if err != nil {
		s.flagSupport = flagSupportUnsupported
		zerolog.Ctx(ctx).Warn().Err(err).Msgf("Failed to check flags on device %v; disabling flag checks", s.r)
		return false
	}
	s.flagSupport = flagSupportSupported
	return strings.Contains(out, flagName)
}

// WriteFlag requests a flag override through the Phenotype broadcast and
// waits a fixed delay for the write to settle. The broadcast has no direct
// response; committed state must be checked separately with FlagCommitted.
func (s *DeviceSetup) WriteFlag(ctx context.Context, pname, flagName string, flagType FlagType, flagValue string) error {
	if _, err := s.r.Shell(ctx,
		"am", "broadcast", "-a", "com.google.android.gms.phenotype.FLAG_OVERRIDE",
		"--es", "package", pname,
		"--es", "user", `\*`,
		"--esa", "flags", flagName,
		"--esa", "types", string(flagType),
		"--esa", "values", flagValue,
		"com.google.android.gms"); err != nil {
		return err
	}
	return sleep(ctx, s.flagWriteWait)
}

// EnsureFlag makes sure the given flag override is committed on the device.
// It is idempotent: an already-committed matching flag triggers no write.
// Failure to commit is logged but not fatal; flag configuration is
// best-effort.
func (s *DeviceSetup) EnsureFlag(ctx context.Context, pname, flagName string, flagType FlagType, flagValue string) error {
	log := zerolog.Ctx(ctx)
	if !s.isRooted(ctx) {
		log.Info().Msg("Can't read or write flag value on a non-rooted device. Use the Mobile Utility app to config instead")
		return nil
	}

	if s.FlagCommitted(ctx, pname, flagName) {
		log.Info().Msgf("%s is already committed", flagName)
		return nil
	}
	log.Info().Msgf("Write %s", flagName)
	if err := s.WriteFlag(ctx, pname, flagName, flagType, flagValue); err != nil {
		return err
	}

	if s.FlagCommitted(ctx, pname, flagName) {
		log.Info().Msgf("%s is configured successfully", flagName)
	} else {
		log.Info().Msgf("Failed to configure %s", flagName)
	}
	return nil
}

// EnableBluetoothMultiplex enables bluetooth multiplex sockets for Nearby
// mediums.
func (s *DeviceSetup) EnableBluetoothMultiplex(ctx context.Context) error {
	return s.EnsureFlag(ctx, nearbyPackage, "mediums_supports_bluetooth_multiplex_socket", FlagBool, "true")
}

// EnableWifiAware enables the Wi-Fi Aware medium.
func (s *DeviceSetup) EnableWifiAware(ctx context.Context) error {
	return s.EnsureFlag(ctx, nearbyPackage, "mediums_supports_wifi_aware", FlagBool, "true")
}

// EnableDFSSCC allows WFD/Wi-Fi hotspot in a STA-associated DFS channel.
func (s *DeviceSetup) EnableDFSSCC(ctx context.Context) error {
	return s.EnsureFlag(ctx, nearbyPackage, "mediums_lower_dfs_channel_priority", FlagBool, "false")
}

// DisableWLANDenyList zeroes the Wi-Fi LAN deny-list verification intervals.
func (s *DeviceSetup) DisableWLANDenyList(ctx context.Context) error {
	if err := s.EnsureFlag(ctx, nearbyPackage, "wifi_lan_blacklist_verify_bssid_interval_hours", FlagLong, "0"); err != nil {
		return err
	}
	return s.EnsureFlag(ctx, nearbyPackage, "mediums_wifi_lan_temporary_blacklist_verify_bssid_interval_hours", FlagLong, "0")
}

// SetBLEScanThrottlingDuring2GTransfer toggles BLE scan throttling during 2G
// transfers through the connection-state-changed listener flags.
func (s *DeviceSetup) SetBLEScanThrottlingDuring2GTransfer(ctx context.Context, enable bool) error {
	value := "false"
	if enable {
		value = "true"
	}
	for _, flag := range []string{
		"fast_pair_enable_connection_state_changed_listener",
		"sharing_enable_connection_state_changed_listener",
		"mediums_ble_client_enable_connection_state_changed_listener",
	} {
		if err := s.EnsureFlag(ctx, nearbyPackage, flag, FlagBool, value); err != nil {
			return err
		}
	}
	return nil
}

// DisableRedaction disables info log redaction so device logs stay usable
// for debugging.
func (s *DeviceSetup) DisableRedaction(ctx context.Context) error {
	return s.EnsureFlag(ctx, "com.google.android.gms", "ClientLogging__enable_info_log_redaction", FlagBool, "false")
}

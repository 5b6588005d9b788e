// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import "testing"

func TestIntBetween(t *testing.T) {
	for _, tc := range []struct {
		name            string
		s               string
		prefix, postfix string
		want            int
	}{
		{
			name:   "sta frequency",
			s:      "WifiInfo: SSID: \"lab-ap\", Frequency: 5180 MHz, RSSI: -42",
			prefix: "Frequency:", postfix: "MHz",
			want: 5180,
		},
		{
			name:   "p2p frequency",
			s:      "group: channelFrequency=5745, groupRole=GroupOwner",
			prefix: "channelFrequency=", postfix: ", groupRole=GroupOwner",
			want: 5745,
		},
		{
			name:   "last occurrence wins",
			s:      "Frequency: 2412 MHz ... Frequency: 5180 MHz",
			prefix: "Frequency:", postfix: "MHz",
			want: 5180,
		},
		{
			name:   "prefix absent",
			s:      "no frequency here MHz",
			prefix: "Frequency:", postfix: "MHz",
			want: InvalidInt,
		},
		{
			name:   "postfix absent",
			s:      "Frequency: 5180",
			prefix: "Frequency:", postfix: "MHz",
			want: InvalidInt,
		},
		{
			name:   "postfix precedes prefix",
			s:      "MHz then Frequency: 5180",
			prefix: "Frequency:", postfix: "MHz",
			want: InvalidInt,
		},
		{
			name:   "interior not numeric",
			s:      "Frequency: fast MHz",
			prefix: "Frequency:", postfix: "MHz",
			want: InvalidInt,
		},
		{
			name:   "empty input",
			s:      "",
			prefix: "Frequency:", postfix: "MHz",
			want: InvalidInt,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := IntBetween(tc.s, tc.prefix, tc.postfix); got != tc.want {
				t.Errorf("IntBetween(%q, %q, %q) = %d, want %d", tc.s, tc.prefix, tc.postfix, got, tc.want)
			}
		})
	}
}

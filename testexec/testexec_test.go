// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testexec

import "testing"

func TestQuoteCmdline(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"adb", "-s", "SERIAL123", "shell", "id", "-u"}, "adb -s SERIAL123 shell id -u"},
		{[]string{"adb", "shell", "dumpsys wifi | grep mTelephonyCountryCode"},
			"adb shell 'dumpsys wifi | grep mTelephonyCountryCode'"},
		{[]string{"echo", "it's"}, `echo 'it'"'"'s'`},
		{[]string{"echo", ""}, "echo ''"},
	} {
		if got := quoteCmdline(tc.args); got != tc.want {
			t.Errorf("quoteCmdline(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

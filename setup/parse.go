// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package setup

import (
	"strconv"
	"strings"
)

// InvalidInt is returned by the status-dump parsers when no valid value
// could be extracted.
const InvalidInt = -1

// IntBetween parses the integer between the last occurrences of prefix and
// postfix in s. It returns InvalidInt if either delimiter is missing, the
// prefix does not precede the postfix, or the text between them is not an
// integer.
func IntBetween(s, prefix, postfix string) int {
	left := strings.LastIndex(s, prefix)
	if left < 0 {
		return InvalidInt
	}
	right := strings.LastIndex(s, postfix)
	if right <= left {
		return InvalidInt
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[left+len(prefix) : right]))
	if err != nil {
		return InvalidInt
	}
	return n
}

// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package callutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MismatchError reports a verification failure: the state observed on the
// device did not match the expectation. It is distinct from transient
// channel errors so callers can treat the two differently.
type MismatchError struct {
	What string
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: got %q, want %q", e.What, e.Got, e.Want)
}

// IsMismatch reports whether err is a verification mismatch rather than a
// transient command or RPC failure.
func IsMismatch(err error) bool {
	_, ok := errors.Cause(err).(*MismatchError)
	return ok
}

// verifyEqual logs the expected and actual values and returns a
// MismatchError unless they are equal.
func verifyEqual(ctx context.Context, what, want, got string) error {
	zerolog.Ctx(ctx).Info().Msgf("Expected %s: <%s>, Actual: <%s>", what, want, got)
	if got != want {
		return &MismatchError{What: what, Want: want, Got: got}
	}
	return nil
}

// verifyContains is like verifyEqual but passes when the actual value
// contains the expected value as a substring.
func verifyContains(ctx context.Context, what, want, got string) error {
	zerolog.Ctx(ctx).Info().Msgf("Expected %s: <%s>, Actual: <%s>", what, want, got)
	if !strings.Contains(got, want) {
		return &MismatchError{What: what, Want: want, Got: got}
	}
	return nil
}

// verifyBool logs the expected and actual states and returns a
// MismatchError unless they are equal.
func verifyBool(ctx context.Context, what string, want, got bool) error {
	zerolog.Ctx(ctx).Info().Msgf("%s expected: <%t>, Actual: <%t>", what, want, got)
	if got != want {
		return &MismatchError{What: what, Want: fmt.Sprintf("%t", want), Got: fmt.Sprintf("%t", got)}
	}
	return nil
}

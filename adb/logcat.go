// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/pkg/errors"

	"github.com/automotive-tests/connutils/testexec"
)

// ClearLogcat clears all logcat buffers so that logs start from this point on.
func (d *Device) ClearLogcat(ctx context.Context) error {
	if err := d.ShellCommand(ctx, "logcat", "-b", "all", "-c").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to clear logcat logs")
	}
	return nil
}

// EnableVerboseLoggingForTag enables verbose logging for the specified tag.
func (d *Device) EnableVerboseLoggingForTag(ctx context.Context, tag string) error {
	if err := d.ShellCommand(ctx, "setprop", fmt.Sprintf("log.tag.%v", tag), "VERBOSE").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to enable verbose logging for tag %v", tag)
	}
	return nil
}

// DumpLogcat dumps logcat's output to the specified host file.
func (d *Device) DumpLogcat(ctx context.Context, filePath string, opts ...string) error {
	out, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "failed to create logcat output file")
	}
	defer out.Close()

	cmd := d.ShellCommand(ctx, append([]string{"logcat", "-d"}, opts...)...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to dump logcat")
	}
	return nil
}

// LogcatTimestamp is a logcat-formatted timestamp string:
// MM-DD hh:mm:ss.xxx ex: 06-15 17:03:00.887
type LogcatTimestamp string

var logcatTimestampPattern = regexp.MustCompile(`\d{1,2}-\d{1,2} \d{1,2}:\d{1,2}:\d{1,2}.\d{1,3}`)

// LatestLogcatTimestamp gets the timestamp of the latest logcat entry.
// This can be used as a marker to get logcat entries that only happen after
// this time, allowing for logcat dumps scoped to a particular test without
// needing to clear logcat's buffers.
func (d *Device) LatestLogcatTimestamp(ctx context.Context) (LogcatTimestamp, error) {
	out, err := d.Command(ctx, "logcat", "-t", "1").Output(testexec.DumpLogOnError)
	if err != nil {
		return "", errors.Wrap(err, "failed to get latest logcat entry")
	}
	return LogcatTimestamp(logcatTimestampPattern.Find(out)), nil
}

// DumpLogcatFromTimestamp dumps logcat's output to the specified host file.
// The output will only contain entries that occurred after the timestamp.
func (d *Device) DumpLogcatFromTimestamp(ctx context.Context, filePath string, timestamp LogcatTimestamp) error {
	return d.DumpLogcat(ctx, filePath, "-T", fmt.Sprintf("%v", timestamp))
}

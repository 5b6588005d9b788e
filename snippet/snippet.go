// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package snippet is for interacting with an automation snippet APK which
// provides remote control of the device UI and platform state. The snippet
// runs an RPC server on the device; we forward its port to the host and
// drive it over a TCP connection.
package snippet

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/automotive-tests/connutils/adb"
)

const (
	// instrumentationRunner is the instrumentation entry point shared by
	// snippet APKs built on the Mobly snippet library.
	instrumentationRunner = "com.google.android.mobly.snippet.SnippetRunner"

	// protocolVersion is the snippet RPC protocol version we speak.
	protocolVersion = "1"

	// androidDefaultUser is the user the snippet instrumentation runs as.
	androidDefaultUser = "0"

	// responseTimeout bounds a single RPC round trip.
	responseTimeout = 10 * time.Second
)

// Client drives the RPC server exposed by a snippet APK on the device.
type Client struct {
	device    *adb.Device
	pkg       string
	conn      net.Conn
	reader    *bufio.Reader
	requestID int
}

// Launch starts the snippet instrumentation of the given package on the
// device, verifies it came up, forwards its serving port to the host and
// establishes the TCP connection, then performs the initialize handshake.
func Launch(ctx context.Context, d *adb.Device, pkg string) (*Client, error) {
	launchCmd := d.ShellCommand(ctx,
		"am", "instrument", "--user", androidDefaultUser, "-w", "-e", "action", "start", pkg+"/"+instrumentationRunner)
	stdout, err := launchCmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdout pipe")
	}
	if err := launchCmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start command to launch snippet server")
	}

	// Confirm the protocol version and get the snippet's serving port by
	// parsing the launch command's stdout.
	reader := bufio.NewReader(stdout)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stdout while looking for the snippet protocol version")
	}
	zerolog.Ctx(ctx).Info().Msgf("Snippet launch cmd stdout first line: %s", line)
	protocolMatch := regexp.MustCompile(`SNIPPET START, PROTOCOL ([0-9]+) ([0-9]+)`).FindStringSubmatch(line)
	if len(protocolMatch) == 0 {
		return nil, errors.New("protocol version number not found in stdout")
	} else if protocolMatch[1] != protocolVersion {
		return nil, errors.Errorf("incorrect protocol version; got %v, expected %v", protocolMatch[1], protocolVersion)
	}

	line, err = reader.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stdout while looking for the snippet port")
	}
	zerolog.Ctx(ctx).Info().Msgf("Snippet launch cmd stdout second line: %s", line)
	portMatch := regexp.MustCompile(`SNIPPET SERVING, PORT ([0-9]+)`).FindStringSubmatch(line)
	if len(portMatch) == 0 {
		return nil, errors.New("port number not found in stdout")
	}
	androidPort, err := strconv.Atoi(portMatch[1])
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert port to int")
	}

	// Forward the snippet server port to the host.
	hostPort, err := d.ForwardTCP(ctx, androidPort)
	if err != nil {
		return nil, errors.Wrap(err, "port forwarding failed")
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("localhost:%v", hostPort))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to snippet server")
	}

	c := NewClient(conn)
	c.device = d
	c.pkg = pkg
	if err := c.Initialize(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to initialize snippet server")
	}
	return c, nil
}

// NewClient returns a Client speaking the snippet RPC protocol over an
// established connection. Callers still need to run Initialize before
// making RPCs.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn)}
}

// Stop stops the snippet instrumentation on the device and closes the TCP
// connection to it.
func (c *Client) Stop(ctx context.Context) error {
	if c.device != nil {
		stopCmd := c.device.ShellCommand(ctx, "am", "instrument",
			"--user", androidDefaultUser, "-w", "-e", "action", "stop", c.pkg+"/"+instrumentationRunner)
		if err := stopCmd.Run(); err != nil {
			return errors.Wrap(err, "failed to stop snippet on device")
		}
	}
	if err := c.conn.Close(); err != nil {
		return errors.Wrap(err, "failed to close TCP connection to the snippet")
	}
	return nil
}

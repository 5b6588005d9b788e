// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testexec wraps os/exec for running external commands from test
// utilities. It buffers combined stdout/stderr so that, on failure, the
// output can be dumped to the context logger for postmortems.
package testexec

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RunOption is enum of options which can be passed to Run, Output and Wait
// to control precise behavior of them.
type RunOption int

// DumpLogOnError is an option to dump logs if the executed command fails
// (i.e., exited with non-zero status code).
const DumpLogOnError RunOption = iota

// Cmd represents an external command being prepared or run.
type Cmd struct {
	*exec.Cmd

	ctx context.Context
	log bytes.Buffer
}

// CommandContext prepares a command to run the executable with the given arguments.
func CommandContext(ctx context.Context, name string, arg ...string) *Cmd {
	cmd := &Cmd{ctx: ctx}
	cmd.Cmd = exec.CommandContext(ctx, name, arg...)
	return cmd
}

// Run runs the command to completion.
func (c *Cmd) Run(opts ...RunOption) error {
	if c.Stdout == nil {
		c.Stdout = &c.log
	}
	if c.Stderr == nil {
		c.Stderr = &c.log
	}
	err := c.Cmd.Run()
	c.maybeDumpLog(err, opts)
	return err
}

// Output runs the command and returns its stdout.
// Stderr is captured in the internal log buffer.
func (c *Cmd) Output(opts ...RunOption) ([]byte, error) {
	var stdout bytes.Buffer
	c.Stdout = &stdout
	if c.Stderr == nil {
		c.Stderr = &c.log
	}
	err := c.Cmd.Run()
	c.maybeDumpLog(err, opts)
	return stdout.Bytes(), err
}

// StdoutPipe returns a pipe connected to the command's stdout.
// Stderr is still captured in the internal log buffer.
func (c *Cmd) StdoutPipe() (io.ReadCloser, error) {
	return c.Cmd.StdoutPipe()
}

// Start starts the command but does not wait for its completion.
func (c *Cmd) Start() error {
	if c.Stderr == nil {
		c.Stderr = &c.log
	}
	return c.Cmd.Start()
}

// Wait waits until the started command exits.
func (c *Cmd) Wait(opts ...RunOption) error {
	err := c.Cmd.Wait()
	c.maybeDumpLog(err, opts)
	return err
}

// Kill sends SIGKILL to the process. Wait must still be called afterwards.
func (c *Cmd) Kill() error {
	if c.Process == nil {
		return nil
	}
	return c.Process.Kill()
}

func (c *Cmd) maybeDumpLog(err error, opts []RunOption) {
	if err == nil || !hasOpt(DumpLogOnError, opts) {
		return
	}
	log := zerolog.Ctx(c.ctx)
	log.Info().Msgf("Command: %s", quoteCmdline(c.Args))
	if c.log.Len() > 0 {
		log.Info().Msgf("Output:\n%s", c.log.String())
	}
}

func hasOpt(opt RunOption, opts []RunOption) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}

var plainArgRE = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// quoteCmdline renders a command's argument list as a copy-pasteable shell
// line for the failure dump, single-quoting any argument that needs it.
func quoteCmdline(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if plainArgRE.MatchString(a) {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.Replace(a, "'", `'"'"'`, -1) + "'"
	}
	return strings.Join(quoted, " ")
}

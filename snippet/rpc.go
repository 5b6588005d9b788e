// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package snippet

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// jsonRPCCmd is the command format required to initialize the RPC server.
type jsonRPCCmd struct {
	Cmd string `json:"cmd"`
	UID int    `json:"uid"`
}

// jsonRPCCmdResponse is the corresponding response format to jsonRPCCmd. Only used when initializing the server.
type jsonRPCCmdResponse struct {
	Status bool `json:"status"`
	UID    int  `json:"uid"`
}

// jsonRPCRequest is the primary request format for the snippet APIs.
type jsonRPCRequest struct {
	Method string        `json:"method"`
	ID     int           `json:"id"`
	Params []interface{} `json:"params"`
}

// jsonRPCResponse is the corresponding response format for jsonRPCRequest.
// The Result field's format varies depending on which method is called by
// the request, so it should be unmarshalled based on the request's API.
type jsonRPCResponse struct {
	ID       int             `json:"id"`
	Result   json.RawMessage `json:"result"`
	Callback string          `json:"callback"`
	Error    string          `json:"error"`
}

// send writes a request to the RPC server. A newline is appended to the
// request body as it is required by the RPC server.
func (c *Client) send(body []byte) error {
	if _, err := c.conn.Write(append(body, "\n"...)); err != nil {
		return errors.Wrap(err, "failed to write to server")
	}
	return nil
}

// receive reads one newline-terminated response from the RPC server.
func (c *Client) receive(ctx context.Context) ([]byte, error) {
	deadline := time.Now().Add(responseTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetReadDeadline(deadline)
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, errors.Wrap(err, "failed to read from server")
	}
	zerolog.Ctx(ctx).Debug().Msgf("Raw RPC response: %s", string(line))
	return line, nil
}

// Initialize initializes the snippet RPC server.
func (c *Client) Initialize(ctx context.Context) error {
	reqCmd := jsonRPCCmd{UID: -1, Cmd: "initiate"}
	body, err := json.Marshal(&reqCmd)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal request (%+v) to json", reqCmd)
	}
	if err := c.send(body); err != nil {
		return errors.Wrap(err, "failed to send initialize command")
	}
	b, err := c.receive(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read response to initialize command")
	}

	var res jsonRPCCmdResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return errors.Wrap(err, "failed to unmarshal initialize command response")
	}
	if !res.Status {
		return errors.New("snippet RPC initialize command did not succeed")
	}
	return nil
}

// Call invokes the named remote procedure with the given arguments and
// returns its raw JSON result. The server expects requests to have an
// incrementing ID field; the Client keeps track of the current request ID.
func (c *Client) Call(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	request := jsonRPCRequest{ID: c.requestID, Method: method, Params: make([]interface{}, 0)}
	if len(args) > 0 {
		request.Params = args
	}
	body, err := json.Marshal(&request)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %v request to json", method)
	}
	zerolog.Ctx(ctx).Debug().Msgf("Marshalled request: %s", string(body))

	if err := c.send(body); err != nil {
		return nil, err
	}
	c.requestID++

	b, err := c.receive(ctx)
	if err != nil {
		return nil, err
	}
	var res jsonRPCResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %v response", method)
	}
	if res.Error != "" {
		return nil, errors.Errorf("response error %v", res.Error)
	}
	if res.ID != request.ID {
		return nil, errors.Errorf("response ID mismatch; expected %v, got %v", request.ID, res.ID)
	}
	return res.Result, nil
}

// CallVoid invokes a remote procedure whose result is not needed.
func (c *Client) CallVoid(ctx context.Context, method string, args ...interface{}) error {
	_, err := c.Call(ctx, method, args...)
	return err
}

// CallString invokes a remote procedure returning a string result.
func (c *Client) CallString(ctx context.Context, method string, args ...interface{}) (string, error) {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(res, &s); err != nil {
		return "", errors.Wrapf(err, "failed to parse string from %v result", method)
	}
	return s, nil
}

// CallBool invokes a remote procedure returning a boolean result.
func (c *Client) CallBool(ctx context.Context, method string, args ...interface{}) (bool, error) {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(res, &b); err != nil {
		return false, errors.Wrapf(err, "failed to parse bool from %v result", method)
	}
	return b, nil
}

// CallStrings invokes a remote procedure returning a list of strings.
func (c *Client) CallStrings(ctx context.Context, method string, args ...interface{}) ([]string, error) {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	var s []string
	if err := json.Unmarshal(res, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse string list from %v result", method)
	}
	return s, nil
}

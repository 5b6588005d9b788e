// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package snippet

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeServer answers snippet RPC requests over one end of a pipe.
// respond is called with each decoded request and returns the raw reply line.
func fakeServer(t *testing.T, conn net.Conn, respond func(req map[string]interface{}) string) {
	t.Helper()
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var req map[string]interface{}
			if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
				t.Errorf("fake server got malformed request %q: %v", scanner.Text(), err)
				return
			}
			if _, err := conn.Write(append([]byte(respond(req)), '\n')); err != nil {
				return
			}
		}
	}()
}

func TestInitialize(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server, func(req map[string]interface{}) string {
		if req["cmd"] != "initiate" {
			t.Errorf("Initialize sent cmd %v, want initiate", req["cmd"])
		}
		return `{"status": true, "uid": 1}`
	})

	c := NewClient(client)
	if err := c.Initialize(context.Background()); err != nil {
		t.Errorf("Initialize failed: %v", err)
	}
}

func TestInitializeRejected(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server, func(req map[string]interface{}) string {
		return `{"status": false, "uid": -1}`
	})

	c := NewClient(client)
	if err := c.Initialize(context.Background()); err == nil {
		t.Error("Initialize unexpectedly succeeded with status false")
	}
}

func TestCallIncrementsRequestID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var gotIDs []float64
	fakeServer(t, server, func(req map[string]interface{}) string {
		id := req["id"].(float64)
		gotIDs = append(gotIDs, id)
		res, _ := json.Marshal(map[string]interface{}{"id": id, "result": "ok", "error": ""})
		return string(res)
	})

	c := NewClient(client)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if s, err := c.CallString(ctx, "getDeviceName"); err != nil {
			t.Fatalf("Call %d failed: %v", i, err)
		} else if s != "ok" {
			t.Errorf("Call %d = %q, want ok", i, s)
		}
	}
	if diff := cmp.Diff([]float64{0, 1, 2}, gotIDs); diff != "" {
		t.Errorf("Request IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestCallServerError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server, func(req map[string]interface{}) string {
		return `{"id": 0, "result": null, "error": "no such method"}`
	})

	c := NewClient(client)
	if _, err := c.Call(context.Background(), "bogusMethod"); err == nil {
		t.Error("Call unexpectedly succeeded on server error")
	}
}

func TestCallIDMismatch(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server, func(req map[string]interface{}) string {
		return `{"id": 42, "result": true, "error": ""}`
	})

	c := NewClient(client)
	if _, err := c.CallBool(context.Background(), "wifiIsEnabled"); err == nil {
		t.Error("Call unexpectedly succeeded on response ID mismatch")
	}
}

func TestCallArgsForwarded(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server, func(req map[string]interface{}) string {
		want := []interface{}{"GoogleGuest", nil}
		if diff := cmp.Diff(want, req["params"]); diff != "" {
			t.Errorf("Params mismatch (-want +got):\n%s", diff)
		}
		return `{"id": 0, "result": null, "error": ""}`
	})

	c := NewClient(client)
	if err := c.CallVoid(context.Background(), "wifiConnectSimple", "GoogleGuest", nil); err != nil {
		t.Errorf("CallVoid failed: %v", err)
	}
}

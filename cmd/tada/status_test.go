// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStatusCmd_Properties(t *testing.T) {
	cmd := NewStatusCmd()

	if cmd.Use != "status" {
		t.Errorf("Use = %q, want %q", cmd.Use, "status")
	}

	if !strings.Contains(cmd.Long, "migration") {
		t.Error("Long description should mention migration state")
	}
}

func TestStatusCmd_Flags(t *testing.T) {
	cmd := NewStatusCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, flag := range []string{"--json", "--database.url"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help missing %q flag", flag)
		}
	}
}

func TestCheckDatabase_InvalidURL(t *testing.T) {
	status := checkDatabase(context.Background(), "not-a-url")

	if status.Reachable {
		t.Error("Reachable should be false for an invalid URL")
	}
	if status.Error == "" {
		t.Error("Error should be populated for an invalid URL")
	}
}

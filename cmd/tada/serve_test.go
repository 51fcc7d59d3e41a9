// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cminter/TADA/internal/config"
)

func TestServe_Properties(t *testing.T) {
	cmd := NewServeCmd()

	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}

	if !strings.Contains(cmd.Short, "server") {
		t.Error("Short description should mention server")
	}
}

func TestServe_Flags(t *testing.T) {
	cmd := NewServeCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	expectedFlags := []string{
		"--server.addr",
		"--database.url",
		"--observability.addr",
		"--log.format",
	}
	for _, flag := range expectedFlags {
		if !strings.Contains(output, flag) {
			t.Errorf("Help missing %q flag", flag)
		}
	}
}

func TestServe_FlagDefaults(t *testing.T) {
	cmd := NewServeCmd()
	defaults := config.Default()

	tests := []struct {
		name string
		want string
	}{
		{"server.addr", defaults.Server.Addr},
		{"database.url", defaults.Database.URL},
		{"observability.addr", defaults.Observability.Addr},
		{"log.format", defaults.Log.Format},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("missing flag %q", tt.name)
			continue
		}
		if flag.DefValue != tt.want {
			t.Errorf("%s default = %q, want %q", tt.name, flag.DefValue, tt.want)
		}
	}
}

func TestServe_UntouchedFlagsKeepConfigDefaults(t *testing.T) {
	cmd := NewServeCmd()

	cfg, err := config.Load("", cmd.Flags())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := config.Default()
	if *cfg != *want {
		t.Errorf("Load() with untouched flags = %+v, want %+v", cfg, want)
	}
}

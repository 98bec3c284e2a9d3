// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hogletgames/genesis/base/logx"
	"github.com/hogletgames/genesis/gpu"
	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	sz, err := parseSize("640x480")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(640, 480), sz)

	for _, s := range []string{"", "640", "0x480", "-1x2", "axb"} {
		_, err := parseSize(s)
		assert.Error(t, err, s)
	}
}

func TestPrintDevices(t *testing.T) {
	var b bytes.Buffer
	printDevices(&b, []gpu.DeviceInfo{
		{Properties: driver.PhysicalDeviceProperties{Name: "good"}},
		{Properties: driver.PhysicalDeviceProperties{Name: "bad"}, Reason: errors.New("no graphics queue")},
	})
	out := b.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "good")
	assert.Contains(t, out, "no graphics queue")
}

func TestLoadConfig(t *testing.T) {
	defer func() { logx.UserLevel = slog.LevelInfo }()

	path := filepath.Join(t.TempDir(), "genesis.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644))

	cf, err := loadConfig(&options{config: path})
	require.NoError(t, err)
	assert.Equal(t, "debug", cf.Log.Level)
	assert.Equal(t, slog.LevelDebug, logx.UserLevel)

	// flags win over the file
	_, err = loadConfig(&options{config: path, quiet: true})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, logx.UserLevel)

	_, err = loadConfig(&options{config: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cf := Default()
	require.NoError(t, cf.Validate())
	gc := cf.Render.GPU()
	assert.Equal(t, 3, gc.FramesInFlight)
	assert.Equal(t, 1, gc.Samples)
	assert.True(t, gc.PreferMailbox)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, gc.ClearColor)
	assert.Equal(t, slog.LevelInfo, cf.LogLevel())
}

const tomlConfig = `
[window]
title = "viewer"
width = 1024

[render]
frames_in_flight = 2
sample_count = 4
clear_color = "#336699"
depth_sampled = true

[log]
level = "debug"
`

func TestOpenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))

	cf, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "viewer", cf.Window.Title)
	assert.Equal(t, 1024, cf.Window.Width)
	assert.Equal(t, 600, cf.Window.Height, "unset values keep their defaults")

	gc := cf.Render.GPU()
	assert.Equal(t, 2, gc.FramesInFlight)
	assert.Equal(t, 4, gc.Samples)
	assert.True(t, gc.DepthSampled)
	assert.Equal(t, color.RGBA{0x33, 0x66, 0x99, 255}, gc.ClearColor)
	assert.Equal(t, slog.LevelDebug, cf.LogLevel())
}

func TestOpenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	src := "window:\n  title: yaml\nrender:\n  frames_in_flight: 1\n  validation: true\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cf, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cf.Window.Title)
	assert.Equal(t, 1, cf.Render.FramesInFlight)
	assert.True(t, cf.Render.Validation)
	assert.True(t, cf.Render.PreferMailbox)
}

func TestSaveOpen(t *testing.T) {
	for _, name := range []string{"genesis.toml", "genesis.yml"} {
		path := filepath.Join(t.TempDir(), name)
		cf := Default()
		cf.Window.Title = "saved"
		cf.Render.SampleCount = 8
		require.NoError(t, cf.Save(path))

		got, err := Open(path)
		require.NoError(t, err, name)
		assert.Equal(t, cf, got, name)
	}
}

func TestValidate(t *testing.T) {
	cf := Default()
	cf.Window.Width = 0
	cf.Render.FramesInFlight = 4
	cf.Render.SampleCount = 3
	cf.Render.ClearColor = "blue"
	cf.Log.Level = "loud"
	err := cf.Validate()
	require.Error(t, err)
	for _, msg := range []string{"window size", "frames_in_flight", "sample_count", "invalid color", "log level"} {
		assert.Contains(t, err.Error(), msg)
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nframes_in_flight = 0\n"), 0o644))
	_, err = Open(path)
	assert.ErrorContains(t, err, "frames_in_flight")

	require.NoError(t, os.WriteFile(path, []byte("[render"), 0o644))
	_, err = Open(path)
	assert.ErrorContains(t, err, "parsing")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 128, 0, 255}, c)
	_, err = ParseColor("#ff80")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.toml")
	require.NoError(t, Default().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 8)
	require.NoError(t, Watch(ctx, path, func(cf *Config) { got <- cf }))

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o644))

	cf := Default()
	cf.Render.ClearColor = "#102030"
	require.NoError(t, cf.Save(path))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Render.ClearColor == "#102030" {
				return
			}
		case <-timeout:
			t.Fatal("config was not reloaded")
		}
	}
}

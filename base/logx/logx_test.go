// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, false, false))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(false, true, true))
	assert.Equal(t, slog.LevelError, LevelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false, false))
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, false, true))
}

func TestLevelFromString(t *testing.T) {
	l, ok := LevelFromString("debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, l)
	l, ok = LevelFromString("WARN")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, l)
	_, ok = LevelFromString("loud")
	assert.False(t, ok)
}

func TestHandler(t *testing.T) {
	prev := UserLevel
	defer func() { UserLevel = prev }()

	var buf bytes.Buffer
	lg := slog.New(NewHandler(&buf, termenv.WithProfile(termenv.Ascii)))

	UserLevel = slog.LevelWarn
	lg.Info("hidden")
	lg.Warn("swapchain recreated", "width", 800)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "WARN "), out)
	assert.NotContains(t, out, "level=")
	assert.Contains(t, out, "swapchain recreated")
	assert.Contains(t, out, "width=800")

	buf.Reset()
	UserLevel = slog.LevelDebug
	lg.Debug("now visible")
	assert.True(t, strings.HasPrefix(buf.String(), "DEBUG "), buf.String())

	buf.Reset()
	lg.With("frame", 3).WithGroup("gpu").Error("device lost", "code", -4)
	out = buf.String()
	assert.True(t, strings.HasPrefix(out, "ERROR "), out)
	assert.Contains(t, out, "frame=3")
	assert.Contains(t, out, "gpu.code=-4")
}

func TestDefaultLogger(t *testing.T) {
	prev := UserLevel
	defer func() { UserLevel = prev }()
	UserLevel = slog.LevelDebug
	SetDefaultLogger()

	slog.Debug("this is debug")
	slog.Info("this is info")
	slog.Warn("this is warn")
}

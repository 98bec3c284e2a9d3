// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// UseColor is whether to use color in log messages.
// It is on by default; termenv still drops the color
// when the output is not a terminal.
var UseColor = true

// SetDefaultLogger sets the default logger to be a [Handler]
// writing to [os.Stderr], with the level controlled by [UserLevel].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr)))
}

// Handler is a [slog.Handler] that writes text records prefixed
// with a level tag colored for the terminal.
type Handler struct {
	inner slog.Handler
	st    *handlerState
}

type handlerState struct {
	mu  sync.Mutex
	buf bytes.Buffer
	w   io.Writer
	out *termenv.Output
}

// NewHandler returns a new [Handler] writing to w, filtered by [UserLevel].
// Changes to [UserLevel] take effect immediately.
func NewHandler(w io.Writer, opts ...termenv.OutputOption) *Handler {
	st := &handlerState{w: w, out: termenv.NewOutput(w, opts...)}
	inner := slog.NewTextHandler(&st.buf, &slog.HandlerOptions{
		Level: &UserLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Handler{inner: inner, st: st}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	h.st.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	tag := r.Level.String()
	if UseColor {
		tag = ApplyColor(h.st.out, r.Level, tag)
	}
	if _, err := io.WriteString(h.st.w, tag+" "); err != nil {
		return err
	}
	_, err := h.st.w.Write(h.st.buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), st: h.st}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), st: h.st}
}

// LevelColor returns the color used for the given level,
// resolved against the color profile of out.
func LevelColor(out *termenv.Output, level slog.Level) termenv.Color {
	switch {
	case level >= slog.LevelError:
		return out.Color("1") // red
	case level >= slog.LevelWarn:
		return out.Color("3") // yellow
	case level >= slog.LevelInfo:
		return out.Color("4") // blue
	default:
		return out.Color("8")
	}
}

// ApplyColor returns str styled in the color for level.
func ApplyColor(out *termenv.Output, level slog.Level, str string) string {
	st := out.String(str).Foreground(LevelColor(out, level))
	if level >= slog.LevelError {
		st = st.Bold()
	}
	return st.String()
}

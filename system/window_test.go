// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowOptionsFixup(t *testing.T) {
	opts := &WindowOptions{}
	opts.Fixup()
	assert.Equal(t, "genesis", opts.Title)
	assert.Equal(t, image.Pt(800, 600), opts.Size)

	opts = &WindowOptions{Title: "view", Size: image.Pt(1024, -1)}
	opts.Fixup()
	assert.Equal(t, "view", opts.Title)
	assert.Equal(t, image.Pt(1024, 600), opts.Size)
}

func TestClosedWindow(t *testing.T) {
	w := &Window{Title: "closed"}
	assert.True(t, w.ShouldClose())
	assert.Equal(t, image.Point{}, w.FramebufferSize())
	w.SetTitle("renamed")
	assert.Equal(t, "renamed", w.Title)
	w.Close()
}

// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTest = New("test error")

func TestLog(t *testing.T) {
	assert.NoError(t, Log(nil))
	assert.ErrorIs(t, Log(errTest), errTest)
}

func TestLog1(t *testing.T) {
	assert.Equal(t, 5, Log1(strconv.Atoi("5")))
	assert.Equal(t, 0, Log1(strconv.Atoi("five")))
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(nil) })
	assert.PanicsWithValue(t, errTest, func() { Must(errTest) })
}

func TestWrapped(t *testing.T) {
	err := fmt.Errorf("creating swapchain: %w", errTest)
	assert.True(t, Is(err, errTest))
	assert.Equal(t, errTest, Unwrap(err))
}

func TestCallerInfo(t *testing.T) {
	info := func() string { return CallerInfo() }()
	assert.True(t, strings.Contains(info, "errors_test.go"), info)
}

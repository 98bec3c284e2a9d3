// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hogletgames/genesis/base/errors"
)

func TestFormatPredicates(t *testing.T) {
	assert.True(t, FormatD32SFloat.IsDepth())
	assert.False(t, FormatD32SFloat.HasStencil())
	assert.True(t, FormatD24UnormS8Uint.IsDepth())
	assert.True(t, FormatD24UnormS8Uint.HasStencil())
	assert.False(t, FormatS8Uint.IsDepth())
	assert.False(t, FormatB8G8R8A8SRGB.IsDepth())
	assert.True(t, FormatB8G8R8A8SRGB.IsSRGB())
	assert.False(t, FormatB8G8R8A8Unorm.IsSRGB())
	assert.Equal(t, "D32SFloat", FormatD32SFloat.String())
	assert.Equal(t, "Format(1)", Format(1).String())
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Success.Err())

	err := fmt.Errorf("acquiring image: %w", ErrorOutOfDate.Err())
	assert.True(t, errors.Is(err, ErrOutOfDate))
	assert.False(t, errors.Is(err, ErrSuboptimal))

	assert.True(t, errors.Is(Suboptimal.Err(), ErrSuboptimal))
	assert.True(t, errors.Is(Timeout.Err(), ErrTimeout))
	assert.True(t, errors.Is(ErrorOutOfDeviceMemory.Err(), ErrNoDeviceMemory))
	assert.True(t, errors.Is(ErrorDeviceLost.Err(), ErrDeviceLost))
	assert.True(t, errors.Is(ErrorExtensionNotPresent.Err(), ErrNotSupported))
	assert.EqualError(t, ErrorSurfaceLost.Err(), "driver: ErrorSurfaceLost")

	var re *ResultError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, ErrorOutOfDate, re.Result)
}

func TestDeviceFeaturesSatisfies(t *testing.T) {
	all := DeviceFeatures{SamplerAnisotropy: true, SampleRateShading: true, IndependentBlend: true}
	assert.True(t, all.Satisfies(all))
	assert.True(t, DeviceFeatures{}.Satisfies(DeviceFeatures{}))
	assert.False(t, DeviceFeatures{SamplerAnisotropy: true}.Satisfies(all))
	assert.True(t, all.Satisfies(DeviceFeatures{IndependentBlend: true}))
}

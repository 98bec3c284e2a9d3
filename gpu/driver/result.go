// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"strconv"

	"github.com/hogletgames/genesis/base/errors"
)

// Result is a status code returned by driver operations.
// Non-negative values are successes; negative values are errors.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	Suboptimal                Result = 1000001003
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
	ErrorSurfaceLost          Result = -1000000000
	ErrorOutOfDate            Result = -1000001004
)

// Errors that a [ResultError] matches through [errors.Is].
var (
	// ErrOutOfDate means that a swapchain no longer matches its surface
	// and must be recreated before it can be presented again.
	ErrOutOfDate = errors.New("driver: swapchain out of date")

	// ErrSuboptimal means that a swapchain still works but no longer
	// matches its surface exactly.
	ErrSuboptimal = errors.New("driver: swapchain suboptimal")

	// ErrTimeout means that a wait finished before its condition was met.
	ErrTimeout = errors.New("driver: timeout")

	// ErrNoHostMemory means that host memory could not be allocated.
	ErrNoHostMemory = errors.New("driver: out of host memory")

	// ErrNoDeviceMemory means that device memory could not be allocated.
	ErrNoDeviceMemory = errors.New("driver: out of device memory")

	// ErrDeviceLost means that the logical device became unusable.
	ErrDeviceLost = errors.New("driver: device lost")

	// ErrSurfaceLost means that the surface is no longer available.
	ErrSurfaceLost = errors.New("driver: surface lost")

	// ErrNotSupported means a requested layer, extension or feature is missing.
	ErrNotSupported = errors.New("driver: not supported")
)

// ResultError is the error for a [Result] other than [Success].
type ResultError struct {
	Result Result
}

func (re *ResultError) Error() string {
	return "driver: " + re.Result.String()
}

// Is reports whether the result corresponds to target.
func (re *ResultError) Is(target error) bool {
	switch re.Result {
	case ErrorOutOfDate:
		return target == ErrOutOfDate
	case Suboptimal:
		return target == ErrSuboptimal
	case Timeout, NotReady:
		return target == ErrTimeout
	case ErrorOutOfHostMemory:
		return target == ErrNoHostMemory
	case ErrorOutOfDeviceMemory:
		return target == ErrNoDeviceMemory
	case ErrorDeviceLost:
		return target == ErrDeviceLost
	case ErrorSurfaceLost:
		return target == ErrSurfaceLost
	case ErrorLayerNotPresent, ErrorExtensionNotPresent, ErrorFeatureNotPresent, ErrorIncompatibleDriver:
		return target == ErrNotSupported
	}
	return false
}

// Err returns nil for [Success] and a [*ResultError] otherwise.
// [Suboptimal] is returned as an error so that callers can decide
// whether to recreate.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	return &ResultError{Result: r}
}

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case NotReady:
		return "NotReady"
	case Timeout:
		return "Timeout"
	case Suboptimal:
		return "Suboptimal"
	case ErrorOutOfHostMemory:
		return "ErrorOutOfHostMemory"
	case ErrorOutOfDeviceMemory:
		return "ErrorOutOfDeviceMemory"
	case ErrorInitializationFailed:
		return "ErrorInitializationFailed"
	case ErrorDeviceLost:
		return "ErrorDeviceLost"
	case ErrorLayerNotPresent:
		return "ErrorLayerNotPresent"
	case ErrorExtensionNotPresent:
		return "ErrorExtensionNotPresent"
	case ErrorFeatureNotPresent:
		return "ErrorFeatureNotPresent"
	case ErrorIncompatibleDriver:
		return "ErrorIncompatibleDriver"
	case ErrorSurfaceLost:
		return "ErrorSurfaceLost"
	case ErrorOutOfDate:
		return "ErrorOutOfDate"
	}
	return "Result(" + strconv.Itoa(int(r)) + ")"
}

// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors extends the standard library errors package with
// helpers for the two things the renderer does with most errors:
// logging them where a frame can simply be skipped, and panicking on
// them where a failure leaves GPU state undefined.
package errors

import (
	"log/slog"
	"runtime"
	"strconv"
)

// Log logs err, with the location of the caller, if it is non-nil,
// and returns it unchanged:
//
//	errors.Log(dev.WaitIdle())
//	if errors.Log(target.Resize(size)) != nil {
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return err
}

// Log1 is [Log] for functions returning a value and an error.
// It returns the value, which is the zero value on error:
//
//	devs := errors.Log1(gpu.ListDevices(drv, inst))
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return v
}

// Must panics with err if it is non-nil. It is meant for teardown
// steps that cannot fail without leaving the GPU in an unknown state.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// CallerInfo returns the function, file and line of the caller of
// the function that called CallerInfo.
func CallerInfo() string {
	pc, file, line, _ := runtime.Caller(2)
	return runtime.FuncForPC(pc).Name() + " " + file + ":" + strconv.Itoa(line)
}

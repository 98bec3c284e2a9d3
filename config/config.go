// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration file of the viewer,
// with its window, render and log sections. Files are TOML, or
// YAML for the .yaml and .yml extensions.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hogletgames/genesis/base/logx"
	"github.com/hogletgames/genesis/gpu"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the main config struct
// that contains all of the configuration
// options for the viewer.
type Config struct {

	// the window options
	Window Window `toml:"window" yaml:"window"`

	// the render options
	Render Render `toml:"render" yaml:"render"`

	// the logging options
	Log Log `toml:"log" yaml:"log"`
}

type Window struct {

	// [def: genesis] the title of the window
	Title string `toml:"title" yaml:"title" def:"genesis"`

	// [def: 800] the initial width of the window
	Width int `toml:"width" yaml:"width" def:"800"`

	// [def: 600] the initial height of the window
	Height int `toml:"height" yaml:"height" def:"600"`

	// [def: true] whether the window can be resized
	Resizable bool `toml:"resizable" yaml:"resizable" def:"true"`
}

type Render struct {

	// [def: 3] [min: 1] [max: 3] the number of frames the CPU may record ahead of the GPU
	FramesInFlight int `toml:"frames_in_flight" yaml:"frames_in_flight" def:"3"`

	// [def: 1] the number of samples per pixel of offscreen targets
	SampleCount int `toml:"sample_count" yaml:"sample_count" def:"1"`

	// [def: true] whether to present in mailbox mode when available
	PreferMailbox bool `toml:"prefer_mailbox" yaml:"prefer_mailbox" def:"true"`

	// [def: #000000] the color the frames are cleared to, as #rrggbb
	ClearColor string `toml:"clear_color" yaml:"clear_color" def:"#000000"`

	// whether to enable the validation layer
	Validation bool `toml:"validation" yaml:"validation"`

	// whether the depth attachment is kept and readable by shaders
	DepthSampled bool `toml:"depth_sampled" yaml:"depth_sampled"`
}

type Log struct {

	// [def: info] the log level (debug, info, warn or error)
	Level string `toml:"level" yaml:"level" def:"info"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: Window{Title: "genesis", Width: 800, Height: 600, Resizable: true},
		Render: Render{FramesInFlight: gpu.MaxFramesInFlight, SampleCount: 1, PreferMailbox: true, ClearColor: "#000000"},
		Log:    Log{Level: "info"},
	}
}

// isYAML returns whether the file at path is YAML, based on its extension.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Open reads the configuration file at path over the defaults,
// and validates the result.
func Open(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(b, cf)
	} else {
		err = toml.Unmarshal(b, cf)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cf, nil
}

// Save writes the configuration to path.
func (cf *Config) Save(path string) error {
	var b []byte
	var err error
	if isYAML(path) {
		b, err = yaml.Marshal(cf)
	} else {
		b, err = toml.Marshal(cf)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Validate returns an error joining every invalid setting.
func (cf *Config) Validate() error {
	var errs []error
	if cf.Window.Width <= 0 || cf.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", cf.Window.Width, cf.Window.Height))
	}
	if n := cf.Render.FramesInFlight; n < 1 || n > gpu.MaxFramesInFlight {
		errs = append(errs, fmt.Errorf("frames_in_flight %d must be between 1 and %d", n, gpu.MaxFramesInFlight))
	}
	if n := cf.Render.SampleCount; n < 1 || n > 64 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("sample_count %d must be a power of two up to 64", n))
	}
	if _, err := ParseColor(cf.Render.ClearColor); err != nil {
		errs = append(errs, err)
	}
	if _, ok := logx.LevelFromString(cf.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", cf.Log.Level))
	}
	return errors.Join(errs...)
}

// ParseColor parses a #rrggbb color; the result is opaque.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// LogLevel returns the configured log level, or [logx.UserLevel]
// if it is not valid.
func (cf *Config) LogLevel() slog.Level {
	l, _ := logx.LevelFromString(cf.Log.Level)
	return l
}

// GPU returns the render settings consumed by the gpu package.
func (r *Render) GPU() *gpu.Config {
	gc := gpu.DefaultConfig()
	gc.FramesInFlight = r.FramesInFlight
	gc.Samples = r.SampleCount
	gc.PreferMailbox = r.PreferMailbox
	gc.Validation = r.Validation
	gc.DepthSampled = r.DepthSampled
	if c, err := ParseColor(r.ClearColor); err == nil {
		gc.ClearColor = c
	}
	return gc
}

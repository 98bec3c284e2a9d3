// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command genesis-view opens a window and presents cleared frames
// through the genesis renderer, renders offscreen, or lists the
// GPUs of the system.
package main

import (
	"context"
	"image"
	"log/slog"
	"os"
	"runtime"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/base/logx"
	"github.com/hogletgames/genesis/config"
	"github.com/hogletgames/genesis/gpu"
	"github.com/hogletgames/genesis/system"
	"github.com/spf13/cobra"
)

func init() {
	// glfw and vulkan must be used from the main thread
	runtime.LockOSThread()
}

// options are the flags shared by all commands.
type options struct {

	// path of the configuration file
	config string

	// number of frames to render; 0 renders until the window closes
	frames int

	verbose, veryVerbose, quiet bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cf := config.Default()
	root := &cobra.Command{
		Use:           "genesis-view",
		Short:         "Present frames to a window with the genesis renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(opts)
			if err != nil {
				return errors.Log(err)
			}
			*cf = *loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.Log(runWindow(cmd.Context(), cf, opts))
		},
	}
	fl := root.PersistentFlags()
	fl.StringVarP(&opts.config, "config", "c", "", "configuration file (.toml, .yaml or .yml)")
	fl.IntVarP(&opts.frames, "frames", "n", 0, "number of frames to render (0 renders until closed)")
	fl.BoolVarP(&opts.verbose, "verbose", "v", false, "log informational messages")
	fl.BoolVar(&opts.veryVerbose, "vv", false, "log debug messages")
	fl.BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(newOffscreenCmd(cf, opts), newDevicesCmd(cf))
	return root
}

// loadConfig opens the configuration file, if any, and sets up logging
// from the flags or, without level flags, from the configuration.
func loadConfig(opts *options) (*config.Config, error) {
	cf := config.Default()
	if opts.config != "" {
		var err error
		if cf, err = config.Open(opts.config); err != nil {
			return nil, err
		}
	}
	if opts.verbose || opts.veryVerbose || opts.quiet {
		logx.UserLevel = logx.LevelFromFlags(opts.veryVerbose, opts.verbose, opts.quiet)
	} else {
		logx.UserLevel = cf.LogLevel()
	}
	logx.SetDefaultLogger()
	return cf, nil
}

// runWindow presents frames to a window until it is closed or the
// requested number of frames has been presented. With a configuration
// file, edits to it change the clear color, title and size live.
func runWindow(ctx context.Context, cf *config.Config, opts *options) error {
	app, err := system.NewApp("genesis-view", cf.Render.GPU())
	if err != nil {
		return err
	}
	defer app.Quit()

	w, err := app.NewWindow(&system.WindowOptions{
		Title:     cf.Window.Title,
		Size:      image.Pt(cf.Window.Width, cf.Window.Height),
		Resizable: cf.Window.Resizable,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	reload := make(chan *config.Config, 1)
	if opts.config != "" {
		err := config.Watch(ctx, opts.config, func(nc *config.Config) {
			select {
			case <-reload:
			default:
			}
			reload <- nc
		})
		errors.Log(err)
	}

	fr := w.Renderer
	for !w.ShouldClose() && (opts.frames == 0 || fr.Stats().Frames < opts.frames) {
		app.PollEvents()
		select {
		case nc := <-reload:
			applyConfig(w, cf, nc)
			cf = nc
		default:
		}
		if !fr.BeginFrame(gpu.ClearAll) {
			if w.FramebufferSize() == (image.Point{}) {
				app.WaitEvents()
			}
			continue
		}
		if err := fr.EndFrame(); err != nil {
			return err
		}
		fr.SwapBuffers()
	}
	st := fr.Stats()
	slog.Info("genesis-view: done", "frames", st.Frames, "skipped", st.Skipped, "recreations", st.Recreations)
	return nil
}

// applyConfig applies the live settings of a reloaded configuration.
func applyConfig(w *system.Window, old, cf *config.Config) {
	if c, err := config.ParseColor(cf.Render.ClearColor); err == nil {
		w.Renderer.SetClearColor(c)
	}
	if cf.Window.Title != old.Window.Title {
		w.SetTitle(cf.Window.Title)
	}
	if cf.Window.Width != old.Window.Width || cf.Window.Height != old.Window.Height {
		w.SetSize(image.Pt(cf.Window.Width, cf.Window.Height))
	}
	if cf.Log.Level != old.Log.Level {
		logx.UserLevel = cf.LogLevel()
	}
}

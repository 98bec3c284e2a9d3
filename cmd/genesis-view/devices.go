// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hogletgames/genesis/config"
	"github.com/hogletgames/genesis/gpu"
	"github.com/spf13/cobra"
)

func newDevicesCmd(cf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the GPUs and whether they can be used",
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := newHeadlessContext(cf)
			if err != nil {
				return err
			}
			defer gc.Release()
			infos, err := gpu.ListDevices(gc.Driver, gc.Instance)
			if err != nil {
				return err
			}
			printDevices(cmd.OutOrStdout(), infos)
			return nil
		},
	}
}

func printDevices(w io.Writer, infos []gpu.DeviceInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tGRAPHICS\tSAMPLES\tSTATUS")
	for _, info := range infos {
		status := "ok"
		if info.Reason != nil {
			status = info.Reason.Error()
		}
		fmt.Fprintf(tw, "%s\t%v\t%d\t%v\t%s\n", info.Properties.Name, info.Properties.Type,
			info.Families.Graphics, info.Properties.FramebufferSamples, status)
	}
	tw.Flush()
}

// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audengine/config"
	"github.com/ik5/audengine/output"
)

var (
	preferDevice string

	devicesCmd = &cobra.Command{
		Use:   "devices",
		Short: "List playback and capture devices",
		Args:  cobra.NoArgs,
		RunE:  runDevices,
	}
)

func init() {
	devicesCmd.Flags().StringVar(&preferDevice, "prefer", "", "save a playback device as the preferred one")
}

func runDevices(cmd *cobra.Command, _ []string) error {
	list, err := output.Devices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	prefs := config.NewPreferenceStore(v)
	if preferDevice != "" {
		prefs.SetPreferredDevice(preferDevice)
		if err := prefs.Save(configFile); err != nil {
			return err
		}
		logger.Info("preferred device saved", "device", preferDevice)
	}

	w := cmd.OutOrStdout()
	preferred := prefs.PreferredDevice()
	fmt.Fprintln(w, "Playback:")
	for _, name := range list.Playback {
		mark := " "
		if name == preferred {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s\n", mark, name)
	}
	fmt.Fprintln(w, "Capture:")
	for _, name := range list.Capture {
		fmt.Fprintf(w, "   %s\n", name)
	}
	return nil
}

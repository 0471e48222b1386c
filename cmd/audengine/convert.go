// SPDX-License-Identifier: EPL-2.0

package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ik5/audengine"
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
)

var (
	convertRate     int
	convertChannels int

	convertCmd = &cobra.Command{
		Use:   "convert IN OUT.wav",
		Short: "Convert any supported file to 16 bit WAV",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}
)

func init() {
	convertCmd.Flags().IntVar(&convertRate, "rate", 0, "output sample rate (default: the configured rate)")
	convertCmd.Flags().IntVar(&convertChannels, "channels", 0, "output channels (default: the configured count)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	rate, channels := convertRate, convertChannels
	if rate == 0 {
		rate = cfg.SampleRate
	}
	if channels == 0 {
		channels = cfg.Channels
	}

	frames, err := audengine.ConvertFile(formats.Default(), args[0], args[1], rate, channels)
	if err != nil {
		return err
	}

	size := "?"
	if st, err := os.Stat(args[1]); err == nil {
		size = humanize.IBytes(uint64(st.Size()))
	}
	logger.Info("converted",
		"out", args[1],
		"rate", humanize.SIWithDigits(float64(rate), 1, "Hz"),
		"channels", channels,
		"duration", audio.FramesToDuration(frames, rate),
		"size", size)
	return nil
}

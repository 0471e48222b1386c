// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audengine/playlist"
	"github.com/ik5/audengine/stream"
)

var (
	resample bool
	playFor  time.Duration

	playlistCmd = &cobra.Command{
		Use:   "playlist FILE...",
		Short: "Play files back to back without gaps",
		Args:  cobra.RangeArgs(1, playlist.MaxFiles),
		RunE:  runPlaylist,
	}
)

func init() {
	playlistCmd.Flags().BoolVarP(&resample, "resample", "r", false, "convert tracks that are not 48 kHz stereo")
	playlistCmd.Flags().DurationVar(&playFor, "for", 0, "stop after this long (0 plays until interrupted)")
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	pl := playlist.New(playlist.Options{
		Registry: e.Registry(),
		Resample: resample,
		Logger:   logger,
	})
	defer pl.Close()

	for _, path := range args {
		// Rejected paths are logged by the playlist.
		_ = pl.AddPath(path)
	}
	tracks := pl.TrackList()
	if len(tracks) == 0 {
		return fmt.Errorf("no playable files")
	}
	logger.Info("playlist", "tracks", strings.Join(tracks, ", "))
	pl.Precache()

	s, err := stream.New(e, pl, stream.Options{
		Channels:   playlist.Channels,
		SampleRate: playlist.SampleRate,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	s.Play()
	var timeout <-chan time.Time
	if playFor > 0 {
		timeout = time.After(playFor)
	}
	select {
	case <-ctx.Done():
	case <-timeout:
	}
	logger.Info("stopped", "position", s.PlayingPosition().Round(time.Second))
	return nil
}

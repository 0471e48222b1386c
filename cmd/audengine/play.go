// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/backend"
	"github.com/ik5/audengine/engine"
)

const pollInterval = 50 * time.Millisecond

var errNoSource = errors.New("no audio source available")

var (
	loop bool

	playCmd = &cobra.Command{
		Use:   "play FILE",
		Short: "Load a file into memory and play it",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}

	streamCmd = &cobra.Command{
		Use:   "stream FILE",
		Short: "Stream a file from disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runStream,
	}
)

func init() {
	playCmd.Flags().BoolVarP(&loop, "loop", "l", false, "loop until interrupted")
	streamCmd.Flags().BoolVarP(&loop, "loop", "l", false, "loop until interrupted")
}

func runPlay(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	if st, err := os.Stat(args[0]); err == nil {
		logger.Info("loading", "file", args[0], "size", humanize.IBytes(uint64(st.Size())))
	}
	buf := e.RequestNewBuffer(args[0])
	if buf == backend.Invalid {
		return fmt.Errorf("cannot load %s", args[0])
	}
	defer e.DeleteBuffer(buf)

	src := e.RequestAudioSource(buf, false)
	if src == backend.Invalid {
		return errNoSource
	}
	defer e.DeleteAudioSource(src)

	return playSource(cmd, e, src)
}

func runStream(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	stream := e.RequestNewStream(args[0])
	if stream == backend.Invalid {
		return fmt.Errorf("cannot stream %s", args[0])
	}
	src := e.RequestAudioSource(stream, true)
	if src == backend.Invalid {
		e.DeleteStream(stream)
		return errNoSource
	}
	// Deleting a streaming source deletes its stream too.
	defer e.DeleteAudioSource(src)

	return playSource(cmd, e, src)
}

// playSource plays src and waits for the end or an interrupt.
func playSource(cmd *cobra.Command, e *engine.Engine, src int32) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	started := time.Now()
	e.PlaySource(src, loop)
	waitStopped(ctx, e, src)
	logger.Info("done", "played", time.Since(started).Round(time.Second))
	return nil
}

func waitStopped(ctx context.Context, e *engine.Engine, src int32) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			e.StopSource(src)
			return
		case <-t.C:
			if e.SourceState(src) == audio.StateStopped {
				return
			}
		}
	}
}

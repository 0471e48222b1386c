// SPDX-License-Identifier: EPL-2.0

// Command audengine plays, streams and converts audio files through the
// engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/audengine/config"
	"github.com/ik5/audengine/engine"
)

var (
	// Version as provided by the build.
	Version = ""

	configFile string
	driver     string
	logLevel   string

	v      *viper.Viper
	cfg    config.Config
	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	rootCmd = &cobra.Command{
		Use:           "audengine",
		Short:         "Play and convert audio through the audengine mixer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}
)

func loadConfig(cmd *cobra.Command) error {
	var err error
	v, err = config.NewViper(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("driver") {
		v.Set("driver", driver)
	}
	if cmd.Flags().Changed("log-level") {
		v.Set("log_level", logLevel)
	}

	cfg, err = config.LoadFromViper(v)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Level())
	log.SetDefault(logger)
	return nil
}

// newEngine brings the engine up. A failed init is fatal here: the CLI has
// nothing to do on the null backend.
func newEngine() (*engine.Engine, error) {
	e := engine.New(cfg, engine.WithLogger(logger))
	if err := e.Init(); err != nil {
		return nil, fmt.Errorf("starting audio: %w", err)
	}
	return e, nil
}

// signalContext is cancelled on Ctrl-C or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: audengine.yaml in the user config dir)")
	rootCmd.PersistentFlags().StringVarP(&driver, "driver", "d", "", "output driver: oto, malgo or virtual")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(devicesCmd, playCmd, streamCmd, playlistCmd, convertCmd)
}

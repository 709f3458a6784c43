package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicebridge/internal/config"
)

// cli carries state resolved once in the root pre-run.
type cli struct {
	verbose bool
	timeout time.Duration
	cfg     *config.Config
	cancel  context.CancelFunc
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "speak",
		Short:         "Translate text and turn it into speech",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if c.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg

			if c.timeout > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
				c.cancel = cancel
				cmd.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.cancel != nil {
				c.cancel()
			}
		},
	}
	cmd.SetErr(os.Stderr)
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "Abort network and ffmpeg work after this long (0 disables)")

	cmd.AddCommand(
		newSynthCmd(c),
		newTranslateCmd(c),
		newProbeCmd(c),
	)
	return cmd
}

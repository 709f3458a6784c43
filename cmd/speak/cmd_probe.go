package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

func newProbeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the audio tool needed for natural phrasing is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			probe := speech.NewProbe(c.cfg.Speech.FFmpegBin)
			if probe.Recheck(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", probe.Bin())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not found, multi-sentence text is voiced in one pass\n", probe.Bin())
			}
			premium := "not configured"
			if c.cfg.Speech.PremiumConfigured() {
				premium = "configured (" + c.cfg.Speech.AzureRegion + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "premium voice: %s\n", premium)
			return nil
		},
	}
}

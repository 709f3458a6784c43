package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicebridge/internal/app"
	"github.com/nikhilbhutani/voicebridge/internal/language"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

func newSynthCmd(c *cli) *cobra.Command {
	var (
		text      string
		lang      string
		quality   string
		wholeText bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "synth [text]",
		Short: "Synthesize text to an MP3 file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				text = strings.Join(args, " ")
			}
			q, err := speech.ParseQuality(quality, qualityDefault(c.cfg.Speech.DefaultQuality))
			if err != nil {
				return err
			}

			synth := app.NewSynthesis(c.cfg.Speech)
			out := synth.Orchestrator.Synthesize(cmd.Context(), speech.Request{
				Text:      text,
				Language:  lang,
				Quality:   q,
				WholeText: wholeText,
			})
			out.LogNotices(slog.Default())
			if err := out.Err(); err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(out.Fragment.Audio)
				return err
			}
			if err := os.WriteFile(output, out.Fragment.Audio, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes (%s, %s via %s)\n",
				output, len(out.Fragment.Audio), out.Kind, out.Path, out.Provider)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to speak (defaults to the positional args)")
	cmd.Flags().StringVarP(&lang, "lang", "l", language.Default, "Language code")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "standard or premium (defaults to TTS_DEFAULT_QUALITY)")
	cmd.Flags().BoolVar(&wholeText, "whole-text", false, "Skip sentence segmentation")
	cmd.Flags().StringVarP(&output, "output", "o", "speech.mp3", "Output file, or - for stdout")
	return cmd
}

func qualityDefault(s string) speech.Quality {
	q, err := speech.ParseQuality(s, speech.QualityPremium)
	if err != nil {
		return speech.QualityPremium
	}
	return q
}

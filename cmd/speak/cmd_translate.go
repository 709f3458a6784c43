package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicebridge/internal/app"
	"github.com/nikhilbhutani/voicebridge/internal/language"
)

func newTranslateCmd(c *cli) *cobra.Command {
	var text, from, to string
	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				text = strings.Join(args, " ")
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text given")
			}
			if err := language.Validate(to); err != nil {
				return err
			}

			out, err := app.NewTranslator(c.cfg.Translate, nil).Translate(cmd.Context(), text, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to translate (defaults to the positional args)")
	cmd.Flags().StringVar(&from, "from", language.Default, "Source language code, empty to auto-detect")
	cmd.Flags().StringVar(&to, "to", "", "Target language code")
	cmd.MarkFlagRequired("to")
	return cmd
}

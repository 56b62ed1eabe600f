package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vellum/pkg/driver"
	"vellum/pkg/layout"
)

func newBoxesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "boxes <file-or-url>",
		Short: "Print the laid out box tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			media, vp := a.screen()
			res, err := driver.Render(ctx, doc, media, vp, a.options())
			if err != nil {
				return err
			}
			logWarnings(args[0], res.Warnings)
			if res.Root == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), layout.Dump(res.Root))
			return nil
		},
	}
}

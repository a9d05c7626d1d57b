package cmd

import (
	"github.com/dmorgan81/characterbot/internal/handler"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <novel.txt>",
	Short: "Extract characters, generate their portraits and save the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := do.Invoke[*handler.Handler](injector)
		if err != nil {
			return err
		}

		out, err := h.Handle(ctx, handler.Input{Path: args[0]})
		if err != nil {
			return err
		}

		data, err := out.Characters.Encode()
		if err != nil {
			return err
		}
		printJSON(data)
		cmd.PrintErrf("Generated %d characters, archive saved to %s\n", out.Characters.Len(), out.Archive)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

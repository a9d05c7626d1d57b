package cmd

import (
	"encoding/json"

	"github.com/dmorgan81/characterbot/internal/extract"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <novel.txt>",
	Short: "Only extract the characters and their portrait prompts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := novel.Open(ctx, args[0])
		if err != nil {
			return err
		}

		extractor, err := do.Invoke[*extract.Extractor](injector)
		if err != nil {
			return err
		}

		chars, err := extractor.Extract(ctx, n.Excerpt())
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(struct {
			Characters []extract.Character `json:"characters"`
		}{chars}, "", "  ")
		if err != nil {
			return err
		}
		printJSON(data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmorgan81/characterbot/internal/archive"
	"github.com/dmorgan81/characterbot/internal/handler"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery <character_archive.json>",
	Short: "Re-render the gallery page and feed from a saved archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		arch, err := archive.Decode(data)
		if err != nil {
			return err
		}

		// <root>/<novel>/role_message/character_archive.json
		name := filepath.Base(filepath.Dir(filepath.Dir(args[0])))
		if name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("cannot tell the novel from %s", args[0])
		}

		h, err := do.Invoke[*handler.Handler](injector)
		if err != nil {
			return err
		}
		if err := h.Publish(ctx, novel.Layout{Novel: name}, arch); err != nil {
			return err
		}
		cmd.PrintErrf("Rendered gallery for %s with %d characters\n", name, arch.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(galleryCmd)
}

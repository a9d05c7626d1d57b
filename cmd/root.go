package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmorgan81/characterbot/internal/config"
	"github.com/dmorgan81/characterbot/internal/inject"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputRoot string
	verbose    bool
	textLogs   bool

	cfg      *config.Config
	injector *do.Injector
	ctx      context.Context
	cancel   context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:           "characterbot",
	Short:         "Extract characters from a novel excerpt and paint a portrait of each",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("output") {
			cfg.Output.Root = outputRoot
		}

		logger := log.New(os.Stderr, log.Options{Text: textLogs, Verbose: verbose})
		ctx, cancel = signal.NotifyContext(log.NewContext(context.Background(), logger), os.Interrupt)
		injector = inject.Setup(ctx, cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputRoot, "output", "o", "output", "Directory (or key prefix root) for generated files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&textLogs, "text-logs", false, "Log as text instead of JSON")
}

// Execute runs the CLI. Cleanup happens here rather than in a post-run hook
// because cobra skips those when a command fails.
func Execute() error {
	err := errors.Join(rootCmd.Execute(), shutdown())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func shutdown() error {
	if cancel != nil {
		cancel()
	}
	if injector == nil {
		return nil
	}
	return injector.Shutdown()
}

func printJSON(data []byte) {
	fmt.Println(string(data))
}

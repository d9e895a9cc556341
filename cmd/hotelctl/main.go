package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/shared"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg shared.Config
	root := &cobra.Command{
		Use:           "hotelctl",
		Short:         "hotelctl - operator tools for the hotel booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = shared.Load()
			logger, _ := observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "")
			log.Logger = logger.Output(cmd.ErrOrStderr())
		},
	}
	root.AddCommand(
		newReconcileCmd(&cfg),
		newQuoteCmd(&cfg),
		newUserCmd(&cfg),
		newTokenCmd(&cfg),
	)
	return root
}

package main

import (
	"fmt"

	"github.com/fjod/storefront/internal/config"
	applog "github.com/fjod/storefront/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Grocery storefront client",
	Long:          `storefront browses the catalog, manages the cart and places cash-on-delivery orders against the storefront REST API.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = applog.New(level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		loginCmd, logoutCmd, whoamiCmd,
		pincodeCmd, homeCmd, productsCmd, productCmd, searchCmd, categoriesCmd, bannersCmd,
		cartCmd, checkoutCmd, ordersCmd, addressesCmd,
		reviewsCmd, reviewCmd,
		mockAPICmd,
	)
}

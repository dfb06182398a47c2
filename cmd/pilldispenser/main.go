package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/calvinmclean/pilldispenser/config"
	"github.com/calvinmclean/pilldispenser/logging"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pilldispenser",
	Short: "Scheduled pill dispenser",
	Long:  "Serve the pill dispenser web page and API, drive the carousel servo, and manage the weekly dose schedule.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dispenser",
	Long:  "Load the schedule, connect to the servo, bring up the network link and serve HTTP",
	RunE:  runServe,
}

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Print the slot layout",
	RunE:  runSlots,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the persisted schedule",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(serveCmd, slotsCmd, resetCmd, clientCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

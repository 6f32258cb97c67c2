// Package main provides the CLI entry point for the warranty claim service.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/cmd/claimflow/commands"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/config"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/pkg/claimflow"
)

var (
	version = "1.0.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "claimflow",
	Short: "Claimflow - EV warranty claim lifecycle service",
	Long: `Claimflow manages electric vehicle warranty claims for service centers
and the OEM.

It provides:
  - The claim lifecycle state machine from intake to handover
  - Warranty eligibility evaluation against model coverage conditions
  - A REST API with role-based access for service center and OEM staff
  - An auditable event trail for every claim transition`,
	Version: version,
}

// ============================================================================
// Serve Command
// ============================================================================

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the REST API serving the claim lifecycle and eligibility checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		app, err := claimflow.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to assemble service: %w", err)
		}
		defer app.Close()

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Run()
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commands.ClaimCmd)
	rootCmd.AddCommand(commands.EligibilityCmd)
}

// Package commands provides CLI command implementations.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/config"
	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
	infraClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/claims"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/pkg/claimflow"
)

// Claim command flags
var (
	claimListStatus        string
	claimListTechnician    string
	claimListServiceCenter string
	claimListJSON          bool
)

// ClaimCmd is the parent command for claim operations.
var ClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim inspection commands",
	Long:  `Commands for inspecting warranty claims and their audit trail.`,
}

var claimShowCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show one claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		claim, err := app.Claims.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		output, _ := json.MarshalIndent(claim, "", "  ")
		fmt.Println(string(output))
		return nil
	},
}

var claimListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		filter := infraClaims.ListFilter{
			TechnicianID:    claimListTechnician,
			ServiceCenterID: claimListServiceCenter,
		}
		if claimListStatus != "" {
			status, err := domainClaims.ParseStatus(claimListStatus)
			if err != nil {
				return err
			}
			filter.Status = status
		}

		claims, err := app.Claims.List(context.Background(), filter)
		if err != nil {
			return err
		}

		if claimListJSON {
			output, _ := json.MarshalIndent(claims, "", "  ")
			fmt.Println(string(output))
			return nil
		}

		if len(claims) == 0 {
			fmt.Println("No claims found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLAIM NUMBER\tSTATUS\tVEHICLE\tCUSTOMER\tUPDATED")
		for _, claim := range claims {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				claim.ClaimNumber,
				claim.Status,
				claim.Vehicle.VIN,
				claim.Customer.Name,
				claim.UpdatedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

var claimHistoryCmd = &cobra.Command{
	Use:   "history <claim-id>",
	Short: "Show the audit trail of a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		events, err := app.Claims.History(context.Background(), args[0])
		if err != nil {
			return err
		}

		output, _ := json.MarshalIndent(events, "", "  ")
		fmt.Println(string(output))
		return nil
	},
}

var claimOperationsCmd = &cobra.Command{
	Use:   "operations <claim-id>",
	Short: "Show the operations legal from the claim's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ops, err := app.Claims.ValidOperations(context.Background(), args[0])
		if err != nil {
			return err
		}
		for _, op := range ops {
			fmt.Println(op)
		}
		return nil
	},
}

func newApp() (*claimflow.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return claimflow.NewApp(cfg)
}

func init() {
	claimListCmd.Flags().StringVarP(&claimListStatus, "status", "s", "", "Filter by status")
	claimListCmd.Flags().StringVarP(&claimListTechnician, "technician", "t", "", "Filter by assigned technician id")
	claimListCmd.Flags().StringVarP(&claimListServiceCenter, "service-center", "c", "", "Filter by service center id")
	claimListCmd.Flags().BoolVar(&claimListJSON, "json", false, "Output as JSON")

	ClaimCmd.AddCommand(claimShowCmd)
	ClaimCmd.AddCommand(claimListCmd)
	ClaimCmd.AddCommand(claimHistoryCmd)
	ClaimCmd.AddCommand(claimOperationsCmd)
}

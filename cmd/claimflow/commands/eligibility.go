package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Eligibility command flags
var (
	eligibilityVIN  string
	eligibilityAsOf string
)

// EligibilityCmd is the parent command for warranty eligibility checks.
var EligibilityCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "Warranty eligibility commands",
	Long:  `Commands for evaluating warranty eligibility of a vehicle.`,
}

var eligibilityCheckCmd = &cobra.Command{
	Use:   "check <vehicle-id>",
	Short: "Check warranty eligibility for a vehicle",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && eligibilityVIN == "" {
			return fmt.Errorf("a vehicle id argument or --vin is required")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		asOf := time.Now()
		if eligibilityAsOf != "" {
			asOf, err = time.Parse(time.RFC3339, eligibilityAsOf)
			if err != nil {
				return fmt.Errorf("--as-of must be RFC3339: %w", err)
			}
		}

		ctx := context.Background()
		result, err := func() (interface{}, error) {
			if eligibilityVIN != "" {
				return app.Eligibility.CheckByVIN(ctx, eligibilityVIN, asOf)
			}
			return app.Eligibility.Check(ctx, args[0], asOf)
		}()
		if err != nil {
			return err
		}

		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	},
}

func init() {
	eligibilityCheckCmd.Flags().StringVar(&eligibilityVIN, "vin", "", "Look the vehicle up by VIN instead of id")
	eligibilityCheckCmd.Flags().StringVar(&eligibilityAsOf, "as-of", "", "Evaluate as of this RFC3339 instant")
	EligibilityCmd.AddCommand(eligibilityCheckCmd)
}

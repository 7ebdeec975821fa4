// Package commands implements the subcommands of the adm CLI.
package commands

import (
	"context"
	"fmt"
	"strings"

	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/spf13/cobra"
)

// VisitorCommands returns the visitor ledger inspection commands
func VisitorCommands(visitorService services.VisitorServiceInterface, responseService services.ResponseServiceInterface, logger *observability.Logger) *cobra.Command {
	visitorCmd := &cobra.Command{
		Use:   "visitors",
		Short: "Visitor ledger commands",
		Long: `Visitor ledger commands.

Available commands:
  list      - List all tracked visitors
  responses - Show the answer history for a visitor`,
	}

	visitorCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all tracked visitors",
		RunE:  runListVisitors(visitorService, logger),
	})
	visitorCmd.AddCommand(&cobra.Command{
		Use:   "responses [fingerprint]",
		Short: "Show the answer history for a visitor",
		Args:  cobra.ExactArgs(1),
		RunE:  runListResponses(responseService, logger),
	})

	return visitorCmd
}

func runListVisitors(visitorService services.VisitorServiceInterface, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		visitors, err := visitorService.GetAllVisitors(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to list visitors", err, nil)
			return contextutils.WrapError(err, "failed to list visitors")
		}

		if len(visitors) == 0 {
			fmt.Println("No visitors recorded.")
			return nil
		}

		fmt.Printf("%-5s %-36s %-8s %-16s %-20s\n", "ID", "Fingerprint", "Visits", "IP Address", "First Visit")
		fmt.Println(strings.Repeat("-", 90))
		for _, v := range visitors {
			fmt.Printf("%-5d %-36s %-8d %-16s %-20s\n",
				v.ID, v.Fingerprint, v.VisitCount, v.IPAddress.String, v.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}
}

func runListResponses(responseService services.ResponseServiceInterface, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		fingerprint := args[0]

		responses, err := responseService.AllForVisitor(ctx, fingerprint)
		if err != nil {
			logger.Error(ctx, "Failed to list responses", err, map[string]interface{}{"fingerprint": fingerprint})
			return contextutils.WrapError(err, "failed to list responses")
		}

		if len(responses) == 0 {
			fmt.Printf("No responses recorded for %s.\n", fingerprint)
			return nil
		}

		for _, r := range responses {
			fmt.Printf("[%s] Q: %s\n    A: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Question, r.Answer)
		}
		return nil
	}
}

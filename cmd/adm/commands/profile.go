package commands

import (
	"context"
	"fmt"

	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/spf13/cobra"
)

// ProfileCommands returns the profile summarization commands
func ProfileCommands(profileService services.ProfileServiceInterface, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [fingerprint]",
		Short: "Generate a profile summary for a visitor",
		Long:  `Generate a natural-language profile summary for a visitor from their visit metadata and answer history.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile(profileService, logger),
	}
}

func runProfile(profileService services.ProfileServiceInterface, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		fingerprint := args[0]

		summary, err := profileService.Summarize(ctx, fingerprint)
		if err != nil {
			logger.Error(ctx, "Failed to generate profile summary", err, map[string]interface{}{"fingerprint": fingerprint})
			return contextutils.WrapError(err, "failed to generate profile summary")
		}

		fmt.Println(summary)
		return nil
	}
}

package main

import (
	"context"
	"os"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Guide a user to a destination",
	Long: `Identifies the user, asks for the destination and walks them there.

Without interaction.url in the configuration the terminal plays the tablet:
answer the prompts and type "touch" or "release" to hold or let go of the hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt("user")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := cli.Build(ctx, cfg, logger, cli.IO{In: os.Stdin, Out: os.Stdout}, from)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Console != nil {
			tui.PrintBanner(os.Stdout)
		}
		return cli.RunGuide(ctx, app, cli.GuideOptions{UserID: userID, From: from, To: to}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
	guideCmd.Flags().IntP("user", "u", -1, "User ID; unknown IDs start the registration")
	guideCmd.Flags().StringP("from", "f", "Lobby", "Room the robot is in")
	guideCmd.Flags().StringP("to", "t", "", "Destination; asked to the user when empty")
}

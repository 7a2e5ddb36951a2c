package command

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate [anime_id] [rating]",
	Short: "Rate an anime in your watched list (1-10)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseAnimeID(args[0])
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating: %q", args[1])
		}

		var notes *string
		if cmd.Flags().Changed("notes") {
			n, _ := cmd.Flags().GetString("notes")
			notes = &n
		}

		c, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := c.Rate(ctx, id, rating, notes); err != nil {
			return fmt.Errorf("failed to rate anime: %w", err)
		}
		color.Green("⭐ Rated anime %d: %d/10", id, rating)
		return nil
	},
}

func init() {
	rateCmd.Flags().String("notes", "", "replace the notes on this entry")
}

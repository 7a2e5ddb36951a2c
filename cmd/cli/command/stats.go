package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many anime sit in each of your lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		stats, err := c.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		color.Cyan("📊 Your lists")
		printRule()
		fmt.Printf("Watchlist: %d\n", stats.WatchlistCount)
		fmt.Printf("Watched:   %d\n", stats.WatchedCount)
		fmt.Printf("Favorites: %d\n", stats.FavoritesCount)
		return nil
	},
}

package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Browse trending anime",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := GetOptionalClient().Trending(ctx, page, perPage)
		if err != nil {
			return fmt.Errorf("failed to fetch trending anime: %w", err)
		}

		if len(result.Items) == 0 {
			fmt.Println("Nothing trending on this page")
			return nil
		}

		color.Cyan("🔥 Trending anime (page %d of %d, %d total)", result.Page, result.TotalPages, result.Total)
		printRule()
		for i, item := range result.Items {
			fmt.Printf("%d. %s (ID: %d)\n", (result.Page-1)*result.PerPage+i+1, item.Title, item.ID)
			if item.AverageScore != nil {
				fmt.Printf("   Score: %d%%\n", *item.AverageScore)
			}
			if len(item.Genres) > 0 {
				fmt.Printf("   Genres: %s\n", strings.Join(item.Genres, ", "))
			}
		}
		if result.HasNextPage {
			color.HiBlack("next: animehub trending --page %d", result.Page+1)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [anime_id]",
	Short: "Show details of one anime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime ID: %w", err)
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		c := GetOptionalClient()
		detail, err := c.Anime(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch anime: %w", err)
		}

		color.New(color.Bold).Printf("%s (ID: %d)\n", detail.Title, detail.ID)
		printRule()
		if detail.Format != nil {
			fmt.Printf("Format:   %s\n", *detail.Format)
		}
		if detail.Episodes != nil {
			fmt.Printf("Episodes: %d\n", *detail.Episodes)
		}
		if detail.Status != nil {
			fmt.Printf("Status:   %s\n", *detail.Status)
		}
		if detail.Season != nil && detail.SeasonYear != nil {
			fmt.Printf("Season:   %s %d\n", *detail.Season, *detail.SeasonYear)
		}
		if len(detail.Studios) > 0 {
			fmt.Printf("Studios:  %s\n", strings.Join(detail.Studios, ", "))
		}
		if len(detail.Genres) > 0 {
			fmt.Printf("Genres:   %s\n", strings.Join(detail.Genres, ", "))
		}
		if detail.DescriptionText != "" {
			fmt.Println()
			fmt.Println(detail.DescriptionText)
		}

		if c.HasToken() {
			if m, err := c.Membership(ctx, id); err == nil {
				fmt.Println()
				fmt.Printf("watchlist %s  watched %s  favorites %s\n",
					mark(m.InWatchlist), mark(m.InWatched), mark(m.InFavorites))
			}
		}
		return nil
	},
}

func init() {
	trendingCmd.Flags().Int("page", 1, "page number")
	trendingCmd.Flags().Int("per-page", 12, "items per page (max 50)")
}

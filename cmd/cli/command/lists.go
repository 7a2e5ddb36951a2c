package command

import (
	"errors"
	"fmt"
	"strconv"

	"animehub/cmd/cli/command/client"
	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// lists.go builds the watchlist, watched and favorites command trees; they differ only in kind

var listDescriptions = map[models.ListKind]string{
	models.KindWatchlist: "anime you plan to watch",
	models.KindWatched:   "anime you have finished, with optional ratings",
	models.KindFavorites: "anime you love",
}

func listCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		cmds = append(cmds, newListCommand(kind))
	}
	return cmds
}

func newListCommand(kind models.ListKind) *cobra.Command {
	root := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Manage your %s (%s)", kind.Label(), listDescriptions[kind]),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List everything in your %s", kind.Label()),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			list, err := c.List(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", kind.Label(), err)
			}
			printList(kind, list)
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [anime_id]",
		Short: fmt.Sprintf("Add an anime to your %s", kind.Label()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			req := dto.AddToListRequest{AnimeID: id}
			if kind == models.KindWatched {
				if cmd.Flags().Changed("rating") {
					rating, _ := cmd.Flags().GetInt("rating")
					req.Rating = &rating
				}
				if cmd.Flags().Changed("notes") {
					notes, _ := cmd.Flags().GetString("notes")
					req.Notes = &notes
				}
			}

			c, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			entry, err := c.AddToList(ctx, kind, req)
			if errors.Is(err, client.ErrConflict) {
				color.Yellow("%s is already in your %s", args[0], kind.Label())
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to add anime: %w", err)
			}
			color.Green("✅ Added %s (ID: %d) to your %s", entry.AnimeTitle, entry.AnimeID, kind.Label())
			return nil
		},
	}
	if kind == models.KindWatched {
		addCmd.Flags().Int("rating", 0, "rating from 1 to 10")
		addCmd.Flags().String("notes", "", "personal notes")
	}

	removeCmd := &cobra.Command{
		Use:   "remove [anime_id]",
		Short: fmt.Sprintf("Remove an anime from your %s", kind.Label()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			c, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := c.RemoveFromList(ctx, kind, id); err != nil {
				return fmt.Errorf("failed to remove anime: %w", err)
			}
			color.Green("✅ Removed anime (ID: %d) from your %s", id, kind.Label())
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [anime_id]",
		Short: fmt.Sprintf("Check whether an anime is in your %s", kind.Label()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			in, err := GetOptionalClient().InList(ctx, kind, id)
			if err != nil {
				return err
			}
			if in {
				color.Green("✓ anime %d is in your %s", id, kind.Label())
			} else {
				fmt.Printf("anime %d is not in your %s\n", id, kind.Label())
			}
			return nil
		},
	}

	root.AddCommand(listCmd, addCmd, removeCmd, checkCmd)
	return root
}

func printList(kind models.ListKind, list *dto.ListResponse) {
	if len(list.Items) == 0 {
		fmt.Printf("📺 Your %s is empty\n", kind.Label())
		return
	}

	color.Cyan("📺 Your %s (%d anime)", kind.Label(), list.Total)
	printRule()
	for i, item := range list.Items {
		fmt.Printf("%d. %s (ID: %d)\n", i+1, item.AnimeTitle, item.AnimeID)
		if item.AnimeEpisodes != nil {
			fmt.Printf("   Episodes: %d\n", *item.AnimeEpisodes)
		}
		if item.Rating != nil {
			fmt.Printf("   Rating: %d/10\n", *item.Rating)
		}
		if item.Notes != nil && *item.Notes != "" {
			fmt.Printf("   Notes: %s\n", *item.Notes)
		}
		switch {
		case item.CompletedAt != nil:
			fmt.Printf("   Completed: %s\n", item.CompletedAt.Local().Format("2006-01-02 15:04"))
		case item.AddedAt != nil:
			fmt.Printf("   Added: %s\n", item.AddedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
}

func parseAnimeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid anime ID: %q", s)
	}
	return id, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/lexis/internal/api"
	"github.com/kalambet/lexis/internal/config"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/wotd"
)

// --- lookup ---

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>",
	Short: "Look up a word",
	Long: `Look up a word. Favorited words are answered from the local store,
everything else from the online dictionary.

Examples:
  lexis lookup serendipity
  lexis lookup run --no-record
  lexis lookup run --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noRecord, _ := cmd.Flags().GetBool("no-record")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		infos, err := lookupWord(cmd.Context(), client, args[0], !noRecord, false)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}
		printEntries(os.Stdout, infos)
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("no-record", false, "do not add the word to the search history")
	lookupCmd.Flags().Bool("json", false, "print the raw entries as JSON")
}

// lookupWord fetches the entries for word. exact skips favorites that only
// share the prefix.
func lookupWord(ctx context.Context, client *apiClient, word string, record, exact bool) ([]model.WordInfo, error) {
	params := map[string]string{}
	if !record {
		params["record"] = "false"
	}
	if exact {
		params["exact"] = "true"
	}
	path := withQuery(wordPath("/lookup", word), params)
	resp, err := client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var infos []model.WordInfo
	if err := decodeJSON(resp, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// --- favorites ---

var likeCmd = &cobra.Command{
	Use:   "like <word>",
	Short: "Save a word and all its entries as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		n, err := likeWord(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}
		printSuccess("Liked %s (%d entries)", args[0], n)
		return nil
	},
}

func likeWord(ctx context.Context, client *apiClient, word string) (int, error) {
	infos, err := lookupWord(ctx, client, word, false, true)
	if err != nil {
		return 0, err
	}
	resp, err := client.post(ctx, "/favorites", api.LikeRequest{Entries: infos})
	if err != nil {
		return 0, err
	}
	if err := decodeJSON(resp, nil); err != nil {
		return 0, err
	}
	return len(infos), nil
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike <word>...",
	Short: "Remove words from the favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/favorites", api.UnlikeRequest{Words: args})
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Unliked %s", strings.Join(args, ", "))
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites [prefix]",
	Short: "List favorite words",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWords(cmd.Context(), "/favorites", firstArg(args), "No favorites yet.")
	},
}

// --- recent ---

var recentCmd = &cobra.Command{
	Use:   "recent [prefix]",
	Short: "List recently looked up words, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWords(cmd.Context(), "/recent", firstArg(args), "No recent words.")
	},
}

var recentDeleteCmd = &cobra.Command{
	Use:   "delete <word>",
	Short: "Remove a word from the search history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), wordPath("/recent", args[0]), nil)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Removed %s from history", args[0])
		return nil
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the search history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/recent", nil)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("History cleared")
		return nil
	},
}

func init() {
	recentCmd.AddCommand(recentDeleteCmd)
	recentCmd.AddCommand(recentClearCmd)
}

// --- suggest ---

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Suggest dictionary words starting with a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		favoritesOnly, _ := cmd.Flags().GetBool("favorites")
		path := "/words"
		if favoritesOnly {
			path = withQuery(path, map[string]string{"prefix": args[0], "favorites": "true"})
		} else {
			path = withQuery(path, map[string]string{"prefix": args[0]})
		}
		return listPath(cmd.Context(), path, "No matching words.")
	},
}

func init() {
	suggestCmd.Flags().Bool("favorites", false, "suggest from favorites instead of the word index")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func listWords(ctx context.Context, base, prefix, empty string) error {
	return listPath(ctx, withQuery(base, map[string]string{"prefix": prefix}), empty)
}

func listPath(ctx context.Context, path, empty string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	resp, err := client.get(ctx, path)
	if err != nil {
		return err
	}
	var words []string
	if err := decodeJSON(resp, &words); err != nil {
		return err
	}
	printWords(os.Stdout, words, empty)
	return nil
}

// --- word of the day ---

var wotdCmd = &cobra.Command{
	Use:   "wotd",
	Short: "Show the word of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/word-of-the-day")
		if err != nil {
			return err
		}
		var p wotd.Pair
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		printPair(p)
		return nil
	},
}

var wotdRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute a new word of the day now",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/word-of-the-day/run", nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		// Failure outcomes still carry a result body.
		var res wotd.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}
		if res.Status != wotd.OutcomeSuccess.String() {
			return fmt.Errorf("word of the day run ended with %s after %d attempts: %s", res.Status, res.Attempts, res.Error)
		}
		printPair(res.Pair)
		return nil
	},
}

func init() {
	wotdCmd.AddCommand(wotdRunCmd)
}

func printPair(p wotd.Pair) {
	fmt.Printf("%s\n  %s\n", colorize(colorBold, p.Word), p.Meaning)
	if !p.UpdatedAt.IsZero() {
		fmt.Printf("  %s\n", colorize(colorCyan, p.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

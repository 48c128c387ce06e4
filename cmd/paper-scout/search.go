// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/recommend"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the corpus by meaning",
	Long: `Search embeds the query text and returns the stored papers nearest to
it in embedding space. Only indexed papers can match; run "index rebuild"
after ingesting to make new papers searchable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = config default)")
	searchCmd.Flags().Float64("min-similarity", 0, "minimum cosine similarity (0 = config default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")
	results, err := newEngine(s, cfg).SemanticSearch(ctx, strings.Join(args, " "),
		recommend.Options{Limit: limit, MinSimilarity: minSim})
	if err != nil {
		return err
	}

	return printSearchResults(cmd, results)
}

func printSearchResults(cmd *cobra.Command, results []recommend.SearchResult) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, r.Similarity, r.Article.Title)
		fmt.Printf("    #%d  %s  %s\n", r.Article.ID, r.Article.Source, r.Article.URL)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank recent papers against your profile",
	Long: `Recommend scores every recent unfiltered paper against the stored
profile (interests, skill level, preferred sources) and prints the top
results with the reasons behind each score. The ordering is
deterministic: repeated runs over an unchanged corpus agree exactly.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().Int("limit", 0, "maximum results (0 = config default)")
	recommendCmd.Flags().Int("days", 0, "candidate lookback window in days (0 = config default)")
	recommendCmd.Flags().Bool("include-read", false, "also recommend papers already marked read")
	recommendCmd.Flags().Float64("min-score", 0, "minimum score (0 = config default)")
	recommendCmd.Flags().Bool("json", false, "output results as JSON")
	recommendCmd.Flags().String("save", "", "also write results to a YAML file")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	days, _ := cmd.Flags().GetInt("days")
	includeRead, _ := cmd.Flags().GetBool("include-read")
	minScore, _ := cmd.Flags().GetFloat64("min-score")

	recs, err := newEngine(s, cfg).Recommend(ctx, recommend.Options{
		Limit:       limit,
		DaysBack:    days,
		IncludeRead: includeRead,
		MinScore:    minScore,
	})
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		data, err := yaml.Marshal(recs)
		if err != nil {
			return fmt.Errorf("encoding recommendations: %w", err)
		}
		if err := os.WriteFile(save, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", save, err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d recommendations to %s\n", len(recs), save)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Println("No recommendations. Try ingesting more papers or widening --days.")
		return nil
	}

	for i, r := range recs {
		fmt.Printf("%2d. [%.2f] %s\n", i+1, r.Score, r.Article.Title)
		fmt.Printf("    #%d  %s  %s\n", r.Article.ID, r.Article.Source, r.Article.URL)
		for _, reason := range r.Reasons {
			fmt.Printf("    - %s\n", reason.Text)
		}
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/recommend"
)

var similarCmd = &cobra.Command{
	Use:   "similar <article-id>",
	Short: "Find papers similar to a stored paper",
	Long: `Similar returns the indexed papers nearest to the given paper in
embedding space, excluding the paper itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().Int("limit", 0, "maximum results (0 = config default)")
	similarCmd.Flags().Float64("min-similarity", 0, "minimum cosine similarity (0 = config default)")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("article id %q: must be a number", args[0])
	}

	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")
	results, err := newEngine(s, cfg).FindSimilar(ctx, id,
		recommend.Options{Limit: limit, MinSimilarity: minSim})
	if errors.Is(err, recommend.ErrUnindexed) {
		return fmt.Errorf("article %d has no embedding yet: run \"paper-scout index rebuild\" first", id)
	}
	if err != nil {
		return err
	}

	return printSearchResults(cmd, results)
}

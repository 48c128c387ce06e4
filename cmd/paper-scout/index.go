// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the embedding index (rebuild, status, rededup)",
	Long: `Index manages the per-article embedding vectors behind semantic search
and find-similar. Use subcommands to embed unindexed papers, inspect
coverage, or sweep the corpus for duplicates the text matchers missed.`,
}

// --- rebuild subcommand ---

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Embed every paper that is missing a vector",
	Long: `Rebuild walks the corpus and requests an embedding for each paper
without one. Already-indexed papers are skipped unless --force is set;
skipping costs no embedding service calls.`,
	RunE: runIndexRebuild,
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	force, _ := cmd.Flags().GetBool("force")
	summary, err := newEngine(s, cfg).ReindexAll(ctx, force, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- status subcommand ---

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus size and index coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		articles, indexed, err := newEngine(s, cfg).IndexStatus(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%d articles, %d indexed (%d pending)\n", articles, indexed, articles-indexed)
		return nil
	},
}

// --- rededup subcommand ---

var indexRededupCmd = &cobra.Command{
	Use:   "rededup",
	Short: "Sweep the corpus for stored duplicates and merge them",
	Long: `Rededup re-runs the duplicate matchers over the stored corpus,
including the embedding matcher that admission cannot apply. For each
duplicate pair, the earlier-admitted paper survives with the merged
metadata and any engagement the duplicate carried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		merged, err := newDedup(s, cfg).Rededup(context.Background(), os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("%d duplicate(s) merged\n", merged)
		return nil
	},
}

func init() {
	indexRebuildCmd.Flags().Bool("force", false, "re-embed papers that already have vectors")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRededupCmd)

	rootCmd.AddCommand(indexCmd)
}

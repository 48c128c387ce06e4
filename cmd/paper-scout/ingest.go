// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/internal/fetch"
	"github.com/pdiddy/paper-scout/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [queries...]",
	Short: "Fetch new papers and admit them through deduplication",
	Long: `Ingest pulls recent papers from arXiv, Semantic Scholar, and any
configured RSS feeds, then admits each one through the deduplicator so
the corpus keeps exactly one record per paper. Queries default to the
profile's interests.

Use --file to admit articles from a YAML file instead of the network.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("file", "", "admit articles from a YAML file instead of fetching")
	ingestCmd.Flags().StringSlice("source", nil, "restrict to sources: arxiv, semantic_scholar, rss")
	ingestCmd.Flags().Int("max", 0, "maximum articles per source per query (0 = config default)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	d := newDedup(s, cfg)

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return ingestFile(ctx, d, file)
	}

	queries := args
	if len(queries) == 0 {
		profile, err := s.GetProfile(ctx)
		if err != nil {
			return err
		}
		queries = profile.Interests
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries: pass them as arguments or set profile interests first")
	}

	max, _ := cmd.Flags().GetInt("max")
	jobs := buildJobs(cmd, cfg, queries, max)
	if len(jobs) == 0 {
		return fmt.Errorf("no sources selected")
	}

	summary, err := fetch.Run(ctx, d, jobs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed ingestion", summary.Failed)
	}
	return nil
}

func buildJobs(cmd *cobra.Command, cfg types.Config, queries []string, max int) []fetch.Job {
	selected, _ := cmd.Flags().GetStringSlice("source")
	wanted := func(name string) bool {
		if len(selected) == 0 {
			return true
		}
		for _, s := range selected {
			if s == name {
				return true
			}
		}
		return false
	}

	var jobs []fetch.Job
	if wanted(string(types.SourceArxiv)) {
		jobs = append(jobs, fetch.Job{Source: fetch.NewArxiv(cfg.Fetch), Queries: queries, Max: max})
	}
	if wanted(string(types.SourceSemanticScholar)) {
		jobs = append(jobs, fetch.Job{Source: fetch.NewSemanticScholar(cfg.Fetch), Queries: queries, Max: max})
	}
	if wanted(string(types.SourceRSS)) && len(cfg.Fetch.FeedURLs) > 0 {
		// Feeds carry their own content; queries do not apply.
		jobs = append(jobs, fetch.Job{Source: fetch.NewRSS(cfg.Fetch), Max: max})
	}
	return jobs
}

func ingestFile(ctx context.Context, admitter fetch.Admitter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []types.RawArticle
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	failed := 0
	for _, r := range raw {
		res, err := admitter.Admit(ctx, r)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		fmt.Printf("%s #%d: %s\n", res.Outcome, res.Article.ID, res.Article.Title)
	}
	if failed > 0 {
		return fmt.Errorf("%d article(s) failed ingestion", failed)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/paper-scout/internal/dedup"
	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Admitter is the admission side of the deduplicator.
type Admitter interface {
	Admit(ctx context.Context, raw types.RawArticle) (dedup.Result, error)
}

// Job pairs a source with the queries to run against it. Sources that
// ignore queries (RSS) get a single empty query.
type Job struct {
	Source  Source
	Queries []string
	Max     int
}

// Summary counts what an ingest run did.
type Summary struct {
	Fetched   int
	Inserted  int
	Refreshed int
	Merged    int
	Failed    int
}

// Run fetches every job and admits the results. One failing source or
// query never aborts the rest; warnings go to w and failures are
// counted. A rate-limited source skips its remaining queries, since
// they would only be throttled too.
func Run(ctx context.Context, admitter Admitter, jobs []Job, w io.Writer) (Summary, error) {
	var summary Summary

	for _, job := range jobs {
		queries := job.Queries
		if len(queries) == 0 {
			queries = []string{""}
		}

		for _, query := range queries {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			articles, err := job.Source.Fetch(ctx, query, job.Max)
			if err != nil {
				summary.Failed++
				fmt.Fprintf(w, "warning: %s: %v\n", job.Source.Name(), err)
			}
			summary.Fetched += len(articles)

			for _, raw := range articles {
				res, admitErr := admitter.Admit(ctx, raw)
				if admitErr != nil {
					summary.Failed++
					fmt.Fprintf(w, "warning: %s: %v\n", job.Source.Name(), admitErr)
					continue
				}
				switch res.Outcome {
				case dedup.OutcomeInserted:
					summary.Inserted++
				case dedup.OutcomeRefreshed:
					summary.Refreshed++
				case dedup.OutcomeMerged:
					summary.Merged++
				}
			}

			if errors.Is(err, httputil.ErrRateLimited) {
				break
			}
		}
	}

	fmt.Fprintf(w, "fetched %d articles: %d new, %d refreshed, %d merged, %d failed\n",
		summary.Fetched, summary.Inserted, summary.Refreshed, summary.Merged, summary.Failed)
	return summary, nil
}

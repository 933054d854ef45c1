// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"

	"github.com/fitsolutions/edgar-engine/internal/report"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// LoadResult summarizes a batch load.
type LoadResult struct {
	Loaded int
	Failed int
}

// Total returns the number of filings processed.
func (r LoadResult) Total() int {
	return r.Loaded + r.Failed
}

// HasFailures reports whether any filing failed to load.
func (r LoadResult) HasFailures() bool {
	return r.Failed > 0
}

// Load extracts each filing and stores its rows, writing per-filing
// progress to w. A filing that fails to extract is reported and
// skipped without aborting the batch.
func (s *Store) Load(ctx context.Context, filings []types.Filing, opts report.Options, w io.Writer) (LoadResult, error) {
	var result LoadResult
	for _, filing := range filings {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := report.ExtractFiling(filing, opts)
		if res.Failed() {
			result.Failed++
			fmt.Fprintf(w, "failed: %s: %s\n", filing.InstancePath, res.Err)
			continue
		}

		if err := s.InsertResult(ctx, res); err != nil {
			result.Failed++
			fmt.Fprintf(w, "failed: %s: %v\n", filing.InstancePath, err)
			continue
		}

		result.Loaded++
		fmt.Fprintf(w, "loaded: %s (%d reports)\n", filing.InstancePath, len(res.Reports))
	}

	fmt.Fprintf(w, "loaded: %d, failed: %d\n", result.Loaded, result.Failed)
	return result, nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/munitax/internal/engine"
	"github.com/sells-group/munitax/internal/filing"
)

var (
	batchDir         string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compute breakdowns for every filing document in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		paths, err := filingPaths(batchDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			zap.L().Info("no filing documents found", zap.String("dir", batchDir))
			return nil
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		zap.L().Info("processing batch",
			zap.Int("filings", len(paths)),
			zap.Int("concurrency", concurrency),
		)

		eng := newEngine()
		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, path := range paths {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if err := computeOne(eng, path); err != nil {
					failed.Add(1)
					zap.L().Error("filing failed",
						zap.String("file", path),
						zap.Error(err),
					)
					return nil // keep going; failures are summarized
				}
				succeeded.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch")
		}

		fmt.Printf("Processed %d filings: %d succeeded, %d failed\n",
			len(paths), succeeded.Load(), failed.Load())
		if failed.Load() > 0 {
			return eris.Errorf("%d filings failed", failed.Load())
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", ".", "directory of filing documents")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel computations (0 = config default)")
	rootCmd.AddCommand(batchCmd)
}

// filingPaths lists the yaml/json documents in a directory,
// non-recursively, in name order for stable output.
func filingPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func computeOne(eng *engine.Engine, path string) error {
	in, err := filing.Load(path)
	if err != nil {
		return err
	}
	breakdown, err := eng.ComputeFilingBreakdown(*in)
	if err != nil {
		return err
	}
	zap.L().Info("filing computed",
		zap.String("file", path),
		zap.String("filer", breakdown.Filer),
		zap.String("taxable_income", breakdown.JurisdictionTaxableIncome.String()),
		zap.Int("warnings", len(breakdown.Warnings)),
	)
	return nil
}

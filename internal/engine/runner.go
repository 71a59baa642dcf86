package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"opcmirror/internal/config"
)

// RunAll imports every configured root, up to cfg.Runtime.Concurrency at a
// time. Distinct roots never share target paths, so runs are independent.
// The first fatal error cancels the remaining runs; results for runs that
// finished are still returned.
func (e *Engine) RunAll(ctx context.Context, cfg *config.Config) ([]*RunResult, error) {
	roots := cfg.Roots()
	results := make([]*RunResult, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Runtime.Concurrency)

	for i, root := range roots {
		g.Go(func() error {
			res, err := e.Run(ctx, cfg, root)
			results[i] = res
			return err
		})
	}

	err := g.Wait()
	return results, err
}

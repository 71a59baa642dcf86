package engine

import (
	"context"

	"opcmirror/internal/output"
	"opcmirror/internal/tagstore"
)

// committer applies a creation plan in fixed-size batches. Bounding the
// batch size trades call count for per-call latency predictability:
// committing thousands of entities in one store call risks host-imposed
// execution or payload limits.
type committer struct {
	store     tagstore.Store
	chunkSize int
	run       string
	report    func(v any)
}

type commitStats struct {
	folders int
	tags    int
	errs    []RunError
}

// commit creates folders first, in plan order, then tags, both chunked. A
// failed batch marks every item in that batch failed and moves on to the
// next batch; one bad batch never aborts the run.
func (c *committer) commit(ctx context.Context, plan *CreationPlan) commitStats {
	var stats commitStats

	folderPaths := make([]string, len(plan.Folders))
	for i, f := range plan.Folders {
		folderPaths[i] = JoinPath(f.Path)
	}

	batches := chunkCount(len(folderPaths), c.chunkSize)
	for i := 0; i < batches; i++ {
		batch := chunk(folderPaths, i, c.chunkSize)
		results, err := c.store.CreateFolders(ctx, batch)
		if err != nil {
			c.failBatch(&stats, "folder", batch, err)
			continue
		}
		created := 0
		for _, r := range results {
			if r.Err != nil {
				stats.errs = append(stats.errs, RunError{Context: r.Path, Message: r.Err.Error()})
				c.report(output.ItemRecord{
					Run: c.run, Kind: "folder", Path: r.Path,
					Status: output.StatusFailed, Message: r.Err.Error(),
				})
				continue
			}
			created++
			stats.folders++
			c.report(output.ItemRecord{
				Run: c.run, Kind: "folder", Path: r.Path,
				Status: output.StatusCreated,
			})
		}
		c.report(output.Event{
			Type: "commit.batch", Run: c.run, Message: "folders",
			Batch: i + 1, Batches: batches, Created: created,
		})
	}

	batches = chunkCount(len(plan.Tags), c.chunkSize)
	for i := 0; i < batches; i++ {
		batch := chunk(plan.Tags, i, c.chunkSize)
		configs := make([]tagstore.TagConfig, len(batch))
		for j, tag := range batch {
			configs[j] = tagstore.TagConfig{
				Path:     tag.TargetPath(plan.Root),
				Source:   string(tag.Ref),
				DataType: tag.DataType,
			}
		}

		results, err := c.store.CreateTags(ctx, configs)
		if err != nil {
			paths := make([]string, len(configs))
			for j := range configs {
				paths[j] = configs[j].Path
			}
			c.failBatch(&stats, "tag", paths, err)
			continue
		}
		created := 0
		for j, r := range results {
			if r.Err != nil {
				stats.errs = append(stats.errs, RunError{Context: r.Path, Message: r.Err.Error()})
				c.report(output.ItemRecord{
					Run: c.run, Kind: "tag", Path: r.Path, Source: configs[j].Source,
					Status: output.StatusFailed, Message: r.Err.Error(),
				})
				continue
			}
			created++
			stats.tags++
			c.report(output.ItemRecord{
				Run: c.run, Kind: "tag", Path: r.Path, Source: configs[j].Source,
				Status: output.StatusCreated,
			})
		}
		c.report(output.Event{
			Type: "commit.batch", Run: c.run, Message: "tags",
			Batch: i + 1, Batches: batches, Created: created,
		})
	}

	return stats
}

// failBatch records a whole-batch store failure: every item in the batch is
// marked failed, processing continues with the next batch.
func (c *committer) failBatch(stats *commitStats, kind string, paths []string, err error) {
	batchErr := &CommitBatchError{Kind: kind, Size: len(paths), Err: err}
	for _, p := range paths {
		stats.errs = append(stats.errs, RunError{Context: p, Message: batchErr.Error()})
		c.report(output.ItemRecord{
			Run: c.run, Kind: kind, Path: p,
			Status: output.StatusFailed, Message: batchErr.Error(),
		})
	}
}

func chunkCount(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

func chunk[T any](items []T, i, size int) []T {
	lo := i * size
	hi := lo + size
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}

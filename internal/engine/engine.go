// Package engine drives one import run end to end: traverse the remote
// namespace, plan against the target store, then commit (or preview) the
// plan. All remote and store access goes through the collaborator
// interfaces; the engine itself holds no I/O.
package engine

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"opcmirror/internal/config"
	"opcmirror/internal/opc"
	"opcmirror/internal/output"
	"opcmirror/internal/tagstore"
)

// Engine runs imports. It is safe for use by concurrent runs as long as
// the browser and store are; the engine itself keeps no per-run state.
type Engine struct {
	browser opc.Browser
	store   tagstore.Store
	out     *output.Manager

	sinkErrOnce sync.Once
}

func New(browser opc.Browser, store tagstore.Store, out *output.Manager) *Engine {
	return &Engine{browser: browser, store: store, out: out}
}

// emit forwards to the output manager. A failing sink must not fail the
// import, so sink errors are logged once and otherwise dropped.
func (e *Engine) emit(v any) {
	if err := e.out.Write(v); err != nil {
		e.sinkErrOnce.Do(func() {
			log.Debugf("output sink write failed: %v", err)
		})
	}
}

// Run imports one root: the subtree under root.BaseNode mirrored beneath
// root.RootPath. The returned error is fatal (nothing useful happened);
// partial failures are accumulated in the RunResult instead.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, root config.RootSpec) (*RunResult, error) {
	res := &RunResult{Root: root.RootPath}

	e.emit(output.Event{
		Type:    "run.started",
		Run:     root.RootPath,
		Message: root.BaseNode,
	})

	browser := opc.WithRetry(e.browser, opc.RetryPolicy{
		Attempts: cfg.Limits.RetryAttempts,
		Delay:    cfg.Limits.RetryDelay,
	}, func(ref opc.NodeRef, attempt int, err error) {
		e.emit(output.Event{
			Type:    "traversal.retry",
			Run:     root.RootPath,
			Message: fmt.Sprintf("browse %s attempt %d: %v", ref, attempt, err),
		})
	})

	tr := &traversal{
		browser:   browser,
		filter:    NewNameFilter(cfg.Source.SearchNames),
		dataType:  cfg.Source.DataType,
		maxDepth:  cfg.Limits.MaxDepth,
		maxVisits: cfg.Limits.MaxVisits,
		run:       root.RootPath,
		report:    e.emit,
	}

	walked := tr.traverse(ctx, opc.NodeRef(root.BaseNode))
	res.Found = len(walked.tags)
	res.Truncated = walked.truncated
	res.Errors = append(res.Errors, walked.errs...)

	snap, err := e.store.Snapshot(ctx, root.RootPath)
	if err != nil {
		return res, fmt.Errorf("snapshot store under %s: %w", root.RootPath, err)
	}

	plan := BuildPlan(walked.tags, root.RootPath, snap)
	e.emit(output.Event{
		Type:    "plan.built",
		Run:     root.RootPath,
		Found:   res.Found,
		Folders: len(plan.Folders),
		Tags:    len(plan.Tags),
	})

	for _, tag := range plan.SkippedTags {
		e.emit(output.ItemRecord{
			Run: root.RootPath, Kind: "tag", Path: tag.TargetPath(plan.Root),
			Source: string(tag.Ref), Status: output.StatusSkipped,
			Message: "already exists",
		})
	}

	if cfg.Target.DryRun {
		e.previewPlan(root.RootPath, plan)
	} else {
		com := &committer{
			store:     e.store,
			chunkSize: cfg.Limits.ChunkSize,
			run:       root.RootPath,
			report:    e.emit,
		}
		stats := com.commit(ctx, plan)
		res.Created = stats.tags
		res.FoldersCreated = stats.folders
		res.Errors = append(res.Errors, stats.errs...)
	}

	// Succeeded means the traversal reached natural completion, not that
	// every item succeeded; partial failure is normal for large namespaces
	// and is enumerated in Errors.
	res.Succeeded = !res.Truncated

	e.emit(output.Event{
		Type:    "run.finished",
		Run:     root.RootPath,
		Found:   res.Found,
		Created: res.Created,
		Folders: res.FoldersCreated,
		Errors:  len(res.Errors),
	})

	return res, nil
}

// previewPlan reports every planned entity without touching the store.
func (e *Engine) previewPlan(run string, plan *CreationPlan) {
	for _, f := range plan.Folders {
		e.emit(output.ItemRecord{
			Run: run, Kind: "folder", Path: JoinPath(f.Path),
			Status: output.StatusPlanned,
		})
	}
	for _, tag := range plan.Tags {
		e.emit(output.ItemRecord{
			Run: run, Kind: "tag", Path: tag.TargetPath(plan.Root),
			Source: string(tag.Ref), Status: output.StatusPlanned,
		})
	}
}

// Package pipeline runs the full analysis flow: build the dependency
// graph, derive the leaf-first processing order, cluster leaves into
// modules, and persist the artifacts.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/eitatech/gatomia-wiki/internal/artifact"
	"github.com/eitatech/gatomia-wiki/internal/graph"
)

// Options configures a pipeline run.
type Options struct {
	// RepoPath is the repository to analyze. Required.
	RepoPath string

	// OutputDir is the working directory for artifacts. Required.
	OutputDir string

	// Languages restricts analysis; empty means all supported.
	Languages []graph.Language

	// Exclude lists extra directory names to skip.
	Exclude []string

	// Workers caps parse parallelism. <= 0 uses the default.
	Workers int

	// Containers lists extra wrapper directories for clustering.
	Containers []string

	// MaxDepth bounds the module hierarchy. <= 1 keeps the flat tree.
	MaxDepth int

	// CommitID is recorded in metadata when known.
	CommitID string

	// Store, when set, additionally receives the built graph.
	Store graph.Store

	// Logger receives warnings. Nil uses the default logger.
	Logger *log.Logger

	// Reporter receives stage progress events. Optional.
	Reporter *ProgressReporter
}

// Result carries everything a completed run produced.
type Result struct {
	Graph          *graph.Graph
	Levels         []graph.Level
	Tree           graph.ModuleTree
	FromCheckpoint bool
	WorkingDir     string
}

// Run executes the pipeline. When the working directory already has a
// clustering checkpoint, the clustering stage loads it instead of
// re-deriving the tree, so an interrupted run picks up where it left off.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}

	opts.Reporter.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressWorking})
	g, err := graph.Build(ctx, graph.BuildOptions{
		RepoPath:  opts.RepoPath,
		Languages: opts.Languages,
		Exclude:   opts.Exclude,
		Workers:   opts.Workers,
		Logger:    logger,
		OnFile: func(path string) {
			opts.Reporter.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressWorking, Message: path})
		},
	})
	if err != nil {
		opts.Reporter.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressFailed, Message: err.Error()})
		return nil, fmt.Errorf("build graph: %w", err)
	}
	opts.Reporter.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressComplete})

	opts.Reporter.Emit(ProgressEvent{Stage: StageLeveling, Status: ProgressWorking})
	levels := graph.ComputeLevels(g)
	opts.Reporter.Emit(ProgressEvent{Stage: StageLeveling, Status: ProgressComplete})

	writer, err := artifact.NewWriter(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	opts.Reporter.Emit(ProgressEvent{Stage: StageClustering, Status: ProgressWorking})
	tree, fromCheckpoint, err := writer.LoadCheckpoint()
	if err != nil {
		opts.Reporter.Emit(ProgressEvent{Stage: StageClustering, Status: ProgressFailed, Message: err.Error()})
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if fromCheckpoint {
		logger.Printf("module tree checkpoint found at %s, skipping clustering", writer.Path(artifact.FirstModuleTreeFile))
	} else {
		tree = graph.ClusterModules(g.Leaves(), g.Components, graph.ClusterOptions{
			Containers: opts.Containers,
			MaxDepth:   opts.MaxDepth,
		})
		if err := writer.SaveCheckpoint(tree); err != nil {
			opts.Reporter.Emit(ProgressEvent{Stage: StageClustering, Status: ProgressFailed, Message: err.Error()})
			return nil, fmt.Errorf("save checkpoint: %w", err)
		}
	}
	opts.Reporter.Emit(ProgressEvent{Stage: StageClustering, Status: ProgressComplete})

	opts.Reporter.Emit(ProgressEvent{Stage: StageArtifacts, Status: ProgressWorking})
	bundle := artifact.Bundle{
		Components: g.Components,
		Levels:     levels,
		ModuleTree: tree,
		Metadata:   artifact.NewMetadata(opts.RepoPath, opts.CommitID, g, levels, tree, opts.MaxDepth),
	}
	if err := writer.WriteBundle(ctx, bundle); err != nil {
		opts.Reporter.Emit(ProgressEvent{Stage: StageArtifacts, Status: ProgressFailed, Message: err.Error()})
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	opts.Reporter.Emit(ProgressEvent{Stage: StageArtifacts, Status: ProgressComplete})

	if opts.Store != nil {
		if err := opts.Store.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("init store schema: %w", err)
		}
		if err := graph.LoadGraph(ctx, opts.Store, g); err != nil {
			return nil, fmt.Errorf("load graph into store: %w", err)
		}
	}

	return &Result{
		Graph:          g,
		Levels:         levels,
		Tree:           tree,
		FromCheckpoint: fromCheckpoint,
		WorkingDir:     writer.Dir,
	}, nil
}

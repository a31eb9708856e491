package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/eitatech/gatomia-wiki/internal/config"
	"github.com/eitatech/gatomia-wiki/internal/export"
	"github.com/eitatech/gatomia-wiki/internal/graph"
	"github.com/eitatech/gatomia-wiki/internal/mcptools"
	"github.com/eitatech/gatomia-wiki/internal/pipeline"
)

// CLI flags parsed from command line.
type cliFlags struct {
	RepoPath   string
	OutputDir  string
	Languages  string
	Exclude    string
	Containers string
	MaxDepth   int
	Workers    int
	Mermaid    bool
	GraphDB    string
	ServeMCP   bool
	MCPAddr    string
	Verbose    bool
	Version    bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("gatomia-wiki", flag.ContinueOnError)
	fs.StringVar(&flags.RepoPath, "repo", ".", "path to the repository to analyze")
	fs.StringVar(&flags.OutputDir, "output-dir", "", "working directory for analysis artifacts (default: <repo>/.gatomia)")
	fs.StringVar(&flags.Languages, "languages", "", "comma-separated languages to analyze (default: all supported)")
	fs.StringVar(&flags.Exclude, "exclude", "", "comma-separated directory names to skip")
	fs.StringVar(&flags.Containers, "containers", "", "comma-separated wrapper directories collapsed during clustering")
	fs.IntVar(&flags.MaxDepth, "max-depth", 0, "maximum module hierarchy depth (default 1, a flat tree)")
	fs.IntVar(&flags.Workers, "workers", 0, "maximum parse workers (default: 2x CPU count)")
	fs.BoolVar(&flags.Mermaid, "mermaid", false, "also write a Mermaid diagram of the dependency graph")
	fs.StringVar(&flags.GraphDB, "graph-db", "", "path to a persistent graph database (requires cgo build)")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server over stdio for agent integration")
	fs.StringVar(&flags.MCPAddr, "mcp-http", "", "serve MCP tools over HTTP on this address instead of stdio")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.RepoPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyConfig(&flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP || flags.MCPAddr != "" {
		return serveMCP(ctx, flags)
	}
	return analyze(ctx, flags)
}

// applyConfig fills unset flags from the project config file.
func applyConfig(flags *cliFlags, cfg *config.ProjectConfig) {
	if flags.OutputDir == "" {
		flags.OutputDir = cfg.OutputDir
	}
	if flags.Languages == "" {
		flags.Languages = strings.Join(cfg.Languages, ",")
	}
	if flags.Exclude == "" {
		flags.Exclude = strings.Join(cfg.Exclude, ",")
	}
	if flags.Containers == "" {
		flags.Containers = strings.Join(cfg.Containers, ",")
	}
	if flags.MaxDepth == 0 {
		flags.MaxDepth = cfg.MaxDepth
	}
	if flags.Workers == 0 {
		flags.Workers = cfg.Workers
	}
	if cfg.Verbose {
		flags.Verbose = true
	}
}

func analyze(ctx context.Context, flags cliFlags) error {
	outputDir := flags.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(flags.RepoPath, ".gatomia")
	}

	langs, err := splitLanguages(flags.Languages)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if !flags.Verbose {
		logger = log.New(io.Discard, "", 0)
	}

	reporter := pipeline.NewProgressReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range reporter.Subscribe() {
			if event.Status == pipeline.ProgressWorking && event.Message != "" && !flags.Verbose {
				continue
			}
			fmt.Println(pipeline.FormatProgress(event))
		}
	}()

	result, err := pipeline.Run(ctx, pipeline.Options{
		RepoPath:   flags.RepoPath,
		OutputDir:  outputDir,
		Languages:  langs,
		Exclude:    splitList(flags.Exclude),
		Containers: splitList(flags.Containers),
		MaxDepth:   flags.MaxDepth,
		Workers:    flags.Workers,
		Logger:     logger,
		Reporter:   reporter,
	})
	reporter.Close()
	<-done
	if err != nil {
		return err
	}

	if flags.Mermaid {
		diagram := export.GenerateMermaid(result.Graph, result.Tree)
		path := filepath.Join(result.WorkingDir, "dependency_graph.mmd")
		if err := os.WriteFile(path, []byte(diagram), 0o644); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
	}

	stats := result.Graph.Stats()
	fmt.Println()
	fmt.Printf("Analyzed %d components (%d leaves) across %d levels\n",
		stats.ComponentCount, stats.LeafCount, len(result.Levels))
	fmt.Printf("Grouped leaves into %d modules: %s\n",
		len(result.Tree), strings.Join(result.Tree.ModuleNames(), ", "))
	fmt.Printf("Artifacts written to %s\n", result.WorkingDir)
	return nil
}

func serveMCP(ctx context.Context, flags cliFlags) error {
	store, err := graph.OpenStore(flags.GraphDB)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := mcptools.NewAnalysisService(store)
	if flags.MCPAddr != "" {
		return mcptools.RunHTTPServer(ctx, svc, flags.MCPAddr)
	}
	return mcptools.RunStdioServer(ctx, svc)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitLanguages(s string) ([]graph.Language, error) {
	names := splitList(s)
	if len(names) == 0 {
		return nil, nil
	}
	supported := make(map[graph.Language]bool, len(graph.SupportedLanguages))
	for _, l := range graph.SupportedLanguages {
		supported[l] = true
	}
	out := make([]graph.Language, 0, len(names))
	for _, name := range names {
		lang := graph.Language(strings.ToLower(name))
		if !supported[lang] {
			return nil, fmt.Errorf("unsupported language: %s", name)
		}
		out = append(out, lang)
	}
	return out, nil
}

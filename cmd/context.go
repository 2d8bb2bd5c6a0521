package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/commitgraph-go/config"
	"github.com/masmgr/commitgraph-go/internal/git"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all graph commands.
type CommandContext struct {
	Config *config.Config
	Repo   *git.Repository
	Ref    string
	Graph  *graph.Graph
	Logger *zap.Logger
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, opens the repository, resolves the starting
// reference and builds the commit graph.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	repo, err := git.Open(cfg.Repository.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	start, err := repo.ResolveStart(cfg.Repository.Ref)
	if err != nil {
		if errors.Is(err, git.ErrMissingReference) {
			if branches, berr := repo.Branches(); berr == nil && len(branches) > 0 {
				return nil, fmt.Errorf("%w (branches: %s)", err, strings.Join(branches, ", "))
			}
		}
		return nil, err
	}
	logger.Debug("resolved start",
		zap.String("ref", cfg.Repository.Ref),
		zap.String("commit", start.String()),
		zap.String("gitDir", repo.GitDir),
	)

	began := time.Now()
	builder := graph.NewBuilder(repo.Store(), graph.Options{
		Workers:      cfg.Build.Workers,
		MaxTreeDepth: cfg.Build.MaxTreeDepth,
		MaxCommits:   cfg.Build.MaxCommits,
		Logger:       logger,
	})
	g, err := builder.Build(c.Context, start)
	if err != nil {
		return nil, fmt.Errorf("failed to build commit graph: %w", err)
	}
	logger.Debug("built graph",
		zap.Int("commits", g.Len()),
		zap.Int("edges", len(g.Edges())),
		zap.Int("warnings", len(g.Warnings)),
		zap.Duration("elapsed", time.Since(began)),
	)
	logBuildErr(logger, g)

	return &CommandContext{
		Config: cfg,
		Repo:   repo,
		Ref:    cfg.Repository.Ref,
		Graph:  g,
		Logger: logger,
	}, nil
}

// Close flushes the logger.
func (ctx *CommandContext) Close() {
	_ = ctx.Logger.Sync()
}

// Report wraps the graph for the output writers.
func (ctx *CommandContext) Report() *output.GraphReport {
	return &output.GraphReport{
		RepoPath:    ctx.Config.Repository.Path,
		Ref:         ctx.Ref,
		GeneratedAt: time.Now(),
		Graph:       ctx.Graph,
	}
}

// PrintWarnings lists non-fatal build problems in yellow.
func (ctx *CommandContext) PrintWarnings(w io.Writer) {
	if len(ctx.Graph.Warnings) == 0 {
		return
	}
	warn := color.New(color.FgYellow)
	warn.Fprintf(w, "%d warning(s) while reading history:\n", len(ctx.Graph.Warnings))
	for _, warning := range ctx.Graph.Warnings {
		warn.Fprintf(w, "  %s\n", warning.Error())
	}
}

// OutputOptions creates OutputOptions from the merged configuration.
func OutputOptions(cfg *config.Config) (output.OutputOptions, error) {
	format, err := getOutputFormat(cfg.Render.Format)
	if err != nil {
		return output.OutputOptions{}, err
	}
	direction, err := output.ParseDirection(cfg.Render.Direction)
	if err != nil {
		return output.OutputOptions{}, err
	}
	return output.OutputOptions{
		Format:     format,
		OutputPath: cfg.Output.Path,
		Render: output.RenderOptions{
			Direction: direction,
			MaxFiles:  cfg.Render.MaxFilesPerNode,
			Filter:    cfg.Filters.Filter(),
		},
		Top:      cfg.Render.TopPaths,
		LiveURL:  cfg.Visualization.LiveURL,
		Endpoint: cfg.Visualization.Endpoint,
	}, nil
}

// executeWithContext builds the graph, runs fn and reports warnings.
func executeWithContext(c *cli.Context, fn func(ctx *CommandContext, c *cli.Context) error) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	if err := fn(ctx, c); err != nil {
		return err
	}
	ctx.PrintWarnings(os.Stderr)
	return nil
}

// logBuildErr reports the combined build warnings. The logger is a no-op
// unless --verbose is set.
func logBuildErr(logger *zap.Logger, g *graph.Graph) {
	if err := g.Err(); err != nil {
		logger.Warn("history incomplete", zap.Int("warnings", len(g.Warnings)), zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

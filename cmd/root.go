package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph-go/config"
	"github.com/masmgr/commitgraph-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "commitgraph",
		Usage:   "Render a repository's commit graph from its loose objects",
		Version: "1.0.0",
		Commands: []*cli.Command{
			GraphCmd(),
			LogCmd(),
			VerifyCmd(),
			InitConfigCmd(),
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		}, graphFlags()...),
		Action: graphAction,
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository (default: config or \".\")",
		},
		&cli.StringFlag{
			Name:    "ref",
			Aliases: []string{"b"},
			Usage:   "Starting reference: branch, tag, revision or commit id (default: HEAD)",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Number of commits decoded concurrently",
		},
		&cli.IntFlag{
			Name:  "max-commits",
			Usage: "Stop after this many commits (0 = unlimited)",
		},
		&cli.IntFlag{
			Name:  "max-tree-depth",
			Usage: "Maximum directory nesting before a tree is treated as corrupt",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log diagnostic output to stderr",
		},
	}
}

// renderFlags control how the graph is written.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (mermaid, markdown, dot, json, csv, console)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.StringFlag{
			Name:    "direction",
			Aliases: []string{"d"},
			Usage:   "Graph direction (TD, BT, LR, RL)",
		},
		&cli.IntFlag{
			Name:  "max-files",
			Usage: "Maximum changed files listed per node (0 = all)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of most changed paths shown in summaries",
		},
		&cli.BoolFlag{
			Name:  "live-url",
			Usage: "Add a Mermaid Live Editor link",
		},
	}
}

func graphFlags() []cli.Flag {
	return append(commonFlags(), renderFlags()...)
}

// getOutputFormat parses the output format flag, accepting a few aliases.
func getOutputFormat(s string) (output.OutputFormat, error) {
	switch strings.ToLower(s) {
	case "md":
		return output.FormatMarkdown, nil
	case "gv", "graphviz":
		return output.FormatDOT, nil
	case "mmd":
		return output.FormatMermaid, nil
	default:
		return output.ParseFormat(s)
	}
}

// loadConfig loads configuration from file or defaults, then applies
// explicitly set CLI flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("repo") {
		cfg.Repository.Path = c.String("repo")
	}
	if c.IsSet("ref") {
		cfg.Repository.Ref = c.String("ref")
	}
	if c.IsSet("workers") {
		cfg.Build.Workers = c.Int("workers")
	}
	if c.IsSet("max-commits") {
		cfg.Build.MaxCommits = c.Int("max-commits")
	}
	if c.IsSet("max-tree-depth") {
		cfg.Build.MaxTreeDepth = c.Int("max-tree-depth")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.IsSet("format") {
		cfg.Render.Format = c.String("format")
	}
	if c.IsSet("direction") {
		cfg.Render.Direction = c.String("direction")
	}
	if c.IsSet("max-files") {
		cfg.Render.MaxFilesPerNode = c.Int("max-files")
	}
	if c.IsSet("top") {
		cfg.Render.TopPaths = c.Int("top")
	}
	if c.IsSet("live-url") {
		cfg.Visualization.LiveURL = c.Bool("live-url")
	}
	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := getOutputFormat(cfg.Render.Format); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := output.ParseDirection(cfg.Render.Direction); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

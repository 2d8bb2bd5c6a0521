package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/commitgraph-go/internal/graph"
)

// Compile-time interface conformance checks.
var (
	_ GraphReportWriter = (*MermaidGraphWriter)(nil)
	_ GraphReportWriter = (*MarkdownGraphWriter)(nil)
	_ GraphReportWriter = (*DOTGraphWriter)(nil)
	_ GraphReportWriter = (*JSONGraphWriter)(nil)
	_ GraphReportWriter = (*CSVGraphWriter)(nil)
	_ GraphReportWriter = (*ConsoleGraphWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatMermaid  OutputFormat = "mermaid"
	FormatMarkdown OutputFormat = "markdown"
	FormatDOT      OutputFormat = "dot"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatConsole  OutputFormat = "console"
)

// Formats lists every supported format, default first.
var Formats = []OutputFormat{FormatMermaid, FormatMarkdown, FormatDOT, FormatJSON, FormatCSV, FormatConsole}

// ParseFormat converts a flag or config value to an OutputFormat.
// The empty string selects FormatMermaid.
func ParseFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatMermaid, nil
	}
	f := OutputFormat(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
	Render     RenderOptions
	// Top limits the path rankings in summary formats; 0 shows all.
	Top int
	// LiveURL appends a Mermaid Live Editor link where the format allows it.
	LiveURL  bool
	Endpoint string
}

// GraphReport holds a built commit graph and where it came from.
type GraphReport struct {
	RepoPath    string
	Ref         string
	GeneratedAt time.Time
	Graph       *graph.Graph
}

// GraphReportWriter writes commit graph reports.
type GraphReportWriter interface {
	Write(report *GraphReport, options OutputOptions) error
}

// NewGraphWriter creates a report writer for the specified format.
func NewGraphWriter(format OutputFormat) GraphReportWriter {
	switch format {
	case FormatMarkdown:
		return &MarkdownGraphWriter{}
	case FormatDOT:
		return &DOTGraphWriter{}
	case FormatJSON:
		return &JSONGraphWriter{}
	case FormatCSV:
		return &CSVGraphWriter{}
	case FormatConsole:
		return &ConsoleGraphWriter{}
	default:
		return &MermaidGraphWriter{}
	}
}

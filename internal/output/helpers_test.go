package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
	"github.com/masmgr/commitgraph-go/internal/objtest"
)

// linearHistory is R {a} <- C1 {a, b} <- C2 {a'}.
type linearHistory struct {
	g         *graph.Graph
	r, c1, c2 object.ID
}

func newLinearHistory(t *testing.T) linearHistory {
	t.Helper()
	fx := objtest.New(t)
	r := fx.Commit(fx.Files(map[string]string{"a": "v1"}), "Initial commit")
	c1 := fx.Commit(fx.Files(map[string]string{"a": "v1", "b": "b"}), "Add b", r)
	c2 := fx.Commit(fx.Files(map[string]string{"a": "v2"}), "Update a\n\nand drop b", c1)
	return linearHistory{g: buildGraph(t, fx, c2), r: r, c1: c1, c2: c2}
}

func buildGraph(t *testing.T, fx *objtest.Store, start object.ID) *graph.Graph {
	t.Helper()
	g, err := graph.NewBuilder(fx.Reader(), graph.Options{}).Build(context.Background(), start)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func newReport(g *graph.Graph) *GraphReport {
	return &GraphReport{
		RepoPath:    "/tmp/repo",
		Ref:         "main",
		GeneratedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Graph:       g,
	}
}

// writeToFile runs w into a temp file and returns its content.
func writeToFile(t *testing.T, w GraphReportWriter, report *GraphReport, options OutputOptions) string {
	t.Helper()
	options.OutputPath = filepath.Join(t.TempDir(), "out")
	if err := w.Write(report, options); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(options.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

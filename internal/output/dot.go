package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/commitgraph-go/internal/graph"
)

// DOTGraphWriter writes the graph in Graphviz DOT syntax.
type DOTGraphWriter struct{}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// RenderDOT serializes g as a Graphviz digraph with the same node and
// edge order as RenderMermaid.
func RenderDOT(g *graph.Graph, opts RenderOptions) string {
	rankdir := "TB"
	switch opts.Direction {
	case DirectionBT, DirectionLR, DirectionRL:
		rankdir = string(opts.Direction)
	}

	var b strings.Builder
	b.WriteString("digraph commits {\n")
	fmt.Fprintf(&b, "    rankdir=%s;\n", rankdir)
	b.WriteString("    node [shape=box];\n")
	for _, c := range g.Nodes() {
		label := dotEscaper.Replace(c.Subject()) + `\n` + dotEscaper.Replace(filesText(c, opts))
		fmt.Fprintf(&b, "    %q [label=\"%s\"];\n", mermaidNodeID(c.ID), label)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %q -> %q;\n", mermaidNodeID(e.Parent), mermaidNodeID(e.Child))
	}
	b.WriteString("}\n")
	return b.String()
}

// Write outputs the graph as DOT.
func (w *DOTGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	_, err = fmt.Fprint(out, RenderDOT(report.Graph, options.Render))
	return err
}

package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// Direction is the flowchart orientation of a rendered diagram.
type Direction string

const (
	DirectionTD Direction = "TD"
	DirectionBT Direction = "BT"
	DirectionLR Direction = "LR"
	DirectionRL Direction = "RL"
)

// ParseDirection accepts TD, TB, BT, LR and RL in any case.
// The empty string selects DirectionTD.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(s)); d {
	case "", "TB":
		return DirectionTD, nil
	case DirectionTD, DirectionBT, DirectionLR, DirectionRL:
		return d, nil
	default:
		return "", fmt.Errorf("unknown graph direction %q", s)
	}
}

// RenderOptions controls how nodes are labelled.
type RenderOptions struct {
	Direction Direction
	// MaxFiles caps the files listed per node; 0 lists all.
	MaxFiles int
	// Filter hides changes whose paths do not match.
	Filter changeset.Filter
}

const noChangesLabel = "No changes"

var mermaidEscaper = strings.NewReplacer(
	"#", "#35;",
	`"`, "#quot;",
	"<", "#lt;",
	">", "#gt;",
)

// RenderMermaid serializes g as a Mermaid flowchart. Nodes appear in
// first-visited order and edges in discovery order, so the same graph
// always renders to the same text.
func RenderMermaid(g *graph.Graph, opts RenderOptions) string {
	dir := opts.Direction
	if dir == "" {
		dir = DirectionTD
	}

	var b strings.Builder
	fmt.Fprintf(&b, "graph %s\n", dir)
	for _, c := range g.Nodes() {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", mermaidNodeID(c.ID), mermaidLabel(c, opts))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %s --> %s\n", mermaidNodeID(e.Parent), mermaidNodeID(e.Child))
	}
	return b.String()
}

// mermaidNodeID derives a node identifier from the commit id; messages
// are neither unique nor valid identifiers.
func mermaidNodeID(id object.ID) string {
	return "c" + id.String()
}

func mermaidLabel(c *graph.Commit, opts RenderOptions) string {
	return mermaidEscaper.Replace(c.Subject()) + "<br/>" + mermaidEscaper.Replace(filesText(c, opts))
}

// filesText is the shared "Changed files: ..." line used by every diagram format.
func filesText(c *graph.Commit, opts RenderOptions) string {
	shown, hidden := visibleChanges(c, opts)
	if len(shown) == 0 && hidden == 0 {
		return noChangesLabel
	}
	return "Changed files: " + changeList(shown, hidden)
}

// MermaidGraphWriter writes the bare Mermaid diagram.
type MermaidGraphWriter struct{}

// Write outputs the graph as Mermaid text, optionally followed by a
// %% comment carrying a live editor link.
func (w *MermaidGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	diagram := RenderMermaid(report.Graph, options.Render)
	if _, err := fmt.Fprint(out, diagram); err != nil {
		return err
	}
	if options.LiveURL {
		link, err := LiveEditorURL(options.Endpoint, diagram)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%%%% %s\n", link); err != nil {
			return err
		}
	}
	return nil
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/commitgraph-go/internal/object"
)

// JSONGraphWriter writes the graph as JSON.
type JSONGraphWriter struct{}

// JSONGraphReport is the JSON output structure for a commit graph.
type JSONGraphReport struct {
	RepoPath     string       `json:"repo"`
	Ref          string       `json:"ref,omitempty"`
	Start        string       `json:"start"`
	GeneratedAt  string       `json:"generatedAt"`
	TotalCommits int          `json:"totalCommits"`
	Nodes        []JSONCommit `json:"nodes"`
	Edges        []JSONEdge   `json:"edges"`
	Warnings     []string     `json:"warnings,omitempty"`
	LiveURL      string       `json:"liveUrl,omitempty"`
}

// JSONCommit is the JSON output structure for a single commit.
type JSONCommit struct {
	ID         string       `json:"id"`
	Tree       string       `json:"tree"`
	Parents    []string     `json:"parents"`
	Unresolved []string     `json:"unresolved,omitempty"`
	Author     string       `json:"author,omitempty"`
	AuthorName string       `json:"authorName,omitempty"`
	AuthorMail string       `json:"authorEmail,omitempty"`
	AuthorDate string       `json:"authorDate,omitempty"`
	Committer  string       `json:"committer,omitempty"`
	Message    string       `json:"message"`
	Changes    []JSONChange `json:"changes"`
	Hidden     int          `json:"hiddenChanges,omitempty"`
}

// JSONChange is one changed path.
type JSONChange struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// JSONEdge connects a parent to a child.
type JSONEdge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Write outputs the graph report as JSON.
func (w *JSONGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	g := report.Graph

	nodes := make([]JSONCommit, 0, g.Len())
	for _, c := range g.Nodes() {
		shown, hidden := visibleChanges(c, options.Render)
		changes := make([]JSONChange, len(shown))
		for i, ch := range shown {
			changes[i] = JSONChange{Path: ch.Path, Kind: ch.Kind.String()}
		}
		node := JSONCommit{
			ID:        c.ID.String(),
			Tree:      c.Tree.String(),
			Parents:   make([]string, len(c.Parents)),
			Author:    c.Author,
			Committer: c.Committer,
			Message:   c.Message,
			Changes:   changes,
			Hidden:    hidden,
		}
		if sig, ok := object.ParseSignature(c.Author); ok {
			node.AuthorName, node.AuthorMail = sig.Name, sig.Email
			if !sig.When.IsZero() {
				node.AuthorDate = sig.When.Format(time.RFC3339)
			}
		}
		for i, p := range c.Parents {
			node.Parents[i] = p.String()
		}
		for _, u := range c.Unresolved {
			node.Unresolved = append(node.Unresolved, u.String())
		}
		nodes = append(nodes, node)
	}

	edges := make([]JSONEdge, len(g.Edges()))
	for i, e := range g.Edges() {
		edges[i] = JSONEdge{Parent: e.Parent.String(), Child: e.Child.String()}
	}

	var warnings []string
	for _, warning := range g.Warnings {
		warnings = append(warnings, warning.Error())
	}

	jsonReport := JSONGraphReport{
		RepoPath:     report.RepoPath,
		Ref:          report.Ref,
		Start:        g.Start.String(),
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: g.Len(),
		Nodes:        nodes,
		Edges:        edges,
		Warnings:     warnings,
	}
	if options.LiveURL {
		link, err := LiveEditorURL(options.Endpoint, RenderMermaid(g, options.Render))
		if err != nil {
			return err
		}
		jsonReport.LiveURL = link
	}

	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return writeJSON(out, jsonReport)
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

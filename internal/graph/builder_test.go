package graph_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
	"github.com/masmgr/commitgraph-go/internal/objtest"
)

// decodeCounter records how many times each commit id was decoded.
type decodeCounter struct {
	mu     sync.Mutex
	counts map[object.ID]int
}

func newDecodeCounter() *decodeCounter {
	return &decodeCounter{counts: map[object.ID]int{}}
}

func (d *decodeCounter) hook(id object.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[id]++
}

func build(t *testing.T, fx *objtest.Store, start object.ID, opts graph.Options) *graph.Graph {
	t.Helper()
	g, err := graph.NewBuilder(fx.Reader(), opts).Build(context.Background(), start)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func nodeIDs(g *graph.Graph) []object.ID {
	var ids []object.ID
	for _, c := range g.Nodes() {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestBuild_LinearHistory(t *testing.T) {
	fx := objtest.New(t)
	r := fx.Commit(fx.Files(map[string]string{"a": "v1"}), "Initial commit")
	c1 := fx.Commit(fx.Files(map[string]string{"a": "v1", "b": "b"}), "add b", r)
	c2 := fx.Commit(fx.Files(map[string]string{"a": "v2", "b": "b"}), "update a", c1)

	g := build(t, fx, c2, graph.Options{})

	if diff := cmp.Diff([]object.ID{c2, c1, r}, nodeIDs(g)); diff != "" {
		t.Fatalf("node order (-want +got):\n%s", diff)
	}
	wantEdges := []graph.Edge{{Parent: c1, Child: c2}, {Parent: r, Child: c1}}
	if diff := cmp.Diff(wantEdges, g.Edges()); diff != "" {
		t.Fatalf("edges (-want +got):\n%s", diff)
	}

	wantChanges := map[object.ID][]changeset.Change{
		r:  {{Path: "a", Kind: changeset.Added}},
		c1: {{Path: "b", Kind: changeset.Added}},
		c2: {{Path: "a", Kind: changeset.Modified}},
	}
	for id, want := range wantChanges {
		c, ok := g.Node(id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if diff := cmp.Diff(want, c.Changes); diff != "" {
			t.Errorf("changes of %q (-want +got):\n%s", c.Subject(), diff)
		}
	}
	if len(g.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", g.Warnings)
	}
	if g.Err() != nil {
		t.Errorf("Err() = %v, want nil", g.Err())
	}
	if roots := g.Roots(); len(roots) != 1 || roots[0].ID != r {
		t.Errorf("Roots() = %v", roots)
	}
}

func TestBuild_SharedAncestorDecodedOnce(t *testing.T) {
	fx := objtest.New(t)
	root := fx.Commit(fx.Files(map[string]string{"a": "a"}), "root")
	left := fx.Commit(fx.Files(map[string]string{"a": "a", "b": "b"}), "left", root)
	right := fx.Commit(fx.Files(map[string]string{"a": "a", "c": "c"}), "right", root)
	merge := fx.Commit(fx.Files(map[string]string{"a": "a", "b": "b", "c": "c"}), "Merge right into left", left, right)

	for _, workers := range []int{1, 4} {
		t.Run("workers="+strconv.Itoa(workers), func(t *testing.T) {
			counter := newDecodeCounter()
			g := build(t, fx, merge, graph.Options{Workers: workers, OnDecode: counter.hook})

			for id, n := range counter.counts {
				if n != 1 {
					t.Errorf("commit %s decoded %d times", id.Short(), n)
				}
			}
			if counter.counts[root] != 1 {
				t.Fatalf("shared ancestor decoded %d times, want 1", counter.counts[root])
			}
			if diff := cmp.Diff([]object.ID{merge, left, right, root}, nodeIDs(g)); diff != "" {
				t.Fatalf("node order (-want +got):\n%s", diff)
			}
			wantEdges := []graph.Edge{
				{Parent: left, Child: merge},
				{Parent: right, Child: merge},
				{Parent: root, Child: left},
				{Parent: root, Child: right},
			}
			if diff := cmp.Diff(wantEdges, g.Edges()); diff != "" {
				t.Fatalf("edges (-want +got):\n%s", diff)
			}

			m, _ := g.Node(merge)
			wantMerge := []changeset.Change{
				{Path: "b", Kind: changeset.Added},
				{Path: "c", Kind: changeset.Added},
			}
			if diff := cmp.Diff(wantMerge, m.Changes); diff != "" {
				t.Fatalf("merge changes (-want +got):\n%s", diff)
			}
			if !m.IsMerge() {
				t.Error("merge commit not reported as merge")
			}
		})
	}
}

func TestBuild_MissingParent(t *testing.T) {
	fx := objtest.New(t)
	r := fx.Commit(fx.Files(map[string]string{"a": "a"}), "root")
	c1 := fx.Commit(fx.Files(map[string]string{"a": "a", "b": "b"}), "second", r)
	c2 := fx.Commit(fx.Files(map[string]string{"a": "a2", "b": "b"}), "third", c1)
	fx.Remove(c1)

	g := build(t, fx, c2, graph.Options{})

	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (history truncated at missing parent)", g.Len())
	}
	if len(g.Edges()) != 0 {
		t.Fatalf("edges = %v, want none", g.Edges())
	}
	tip, _ := g.Node(c2)
	if diff := cmp.Diff([]object.ID{c1}, tip.Unresolved); diff != "" {
		t.Fatalf("Unresolved (-want +got):\n%s", diff)
	}
	// The missing parent counts as an empty snapshot.
	want := []changeset.Change{{Path: "a", Kind: changeset.Added}, {Path: "b", Kind: changeset.Added}}
	if diff := cmp.Diff(want, tip.Changes); diff != "" {
		t.Fatalf("changes (-want +got):\n%s", diff)
	}

	if len(g.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", g.Warnings)
	}
	if !errors.Is(g.Warnings[0], object.ErrNotFound) || g.Warnings[0].Object != c1 {
		t.Fatalf("warning = %+v, want not found for %s", g.Warnings[0], c1)
	}
	if !errors.Is(g.Err(), object.ErrNotFound) {
		t.Fatalf("Err() = %v, want to wrap ErrNotFound", g.Err())
	}
}

func TestBuild_CorruptAncestor(t *testing.T) {
	fx := objtest.New(t)
	tree := fx.Files(map[string]string{"a": "a"})
	const broken = object.ID("dddddddddddddddddddddddddddddddddddddddd")
	fx.WriteCompressed(broken, []byte("commit 3\x00bad"))
	tip := fx.Commit(tree, "tip", broken)

	g := build(t, fx, tip, graph.Options{})

	if g.Len() != 1 || len(g.Warnings) != 1 {
		t.Fatalf("Len=%d warnings=%v", g.Len(), g.Warnings)
	}
	if !object.IsCorrupt(g.Warnings[0]) {
		t.Fatalf("warning = %v, want corrupt", g.Warnings[0])
	}
}

func TestBuild_MissingTree(t *testing.T) {
	fx := objtest.New(t)
	r := fx.Commit(fx.Files(map[string]string{"a": "a"}), "root")
	lostTree := fx.Files(map[string]string{"a": "a", "z": "z"})
	tip := fx.Commit(lostTree, "tip", r)
	fx.Remove(lostTree)

	g := build(t, fx, tip, graph.Options{})

	c, _ := g.Node(tip)
	if len(c.Files) != 0 {
		t.Fatalf("Files = %v, want empty", c.Files)
	}
	if diff := cmp.Diff([]changeset.Change{{Path: "a", Kind: changeset.Removed}}, c.Changes); diff != "" {
		t.Fatalf("changes (-want +got):\n%s", diff)
	}
	if len(g.Warnings) != 1 || g.Warnings[0].Commit != tip || !object.IsNotFound(g.Warnings[0]) {
		t.Fatalf("warnings = %v", g.Warnings)
	}
	if len(g.Edges()) != 1 {
		t.Fatalf("edges = %v, want the parent edge", g.Edges())
	}
}

func TestBuild_StartUnreadable(t *testing.T) {
	fx := objtest.New(t)
	_, err := graph.NewBuilder(fx.Reader(), graph.Options{}).Build(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !object.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}

	blob := fx.Blob("not a commit")
	_, err = graph.NewBuilder(fx.Reader(), graph.Options{}).Build(context.Background(), blob)
	if !object.IsCorrupt(err) {
		t.Fatalf("err = %v, want corrupt for a blob start", err)
	}
}

func TestBuild_CycleDetected(t *testing.T) {
	fx := objtest.New(t)
	tree := fx.Files(map[string]string{"a": "a"})
	const (
		a = object.ID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
		b = object.ID("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	)
	plant := func(id, parent object.ID) {
		payload := "tree " + string(tree) + "\nparent " + string(parent) + "\n\nloop\n"
		fx.WriteCompressed(id, []byte("commit "+strconv.Itoa(len(payload))+"\x00"+payload))
	}
	plant(a, b)
	plant(b, a)

	_, err := graph.NewBuilder(fx.Reader(), graph.Options{}).Build(context.Background(), a)
	if !errors.Is(err, graph.ErrCycleDetected) {
		t.Fatalf("err = %v, want ErrCycleDetected", err)
	}
}

func TestBuild_MaxCommits(t *testing.T) {
	fx := objtest.New(t)
	tree := fx.Files(map[string]string{"a": "a"})
	prev := fx.Commit(tree, "c0")
	for i := 1; i < 5; i++ {
		prev = fx.Commit(tree, "c"+strconv.Itoa(i), prev)
	}

	g := build(t, fx, prev, graph.Options{MaxCommits: 3})

	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	if len(g.Warnings) != 1 || !errors.Is(g.Warnings[0], graph.ErrHistoryTruncated) {
		t.Fatalf("warnings = %v, want one truncation warning", g.Warnings)
	}
	last := g.Nodes()[2]
	if len(last.Unresolved) != 1 {
		t.Fatalf("oldest visited commit should have an unresolved parent: %+v", last)
	}
}

func TestBuild_Canceled(t *testing.T) {
	fx := objtest.New(t)
	tip := fx.Commit(fx.Files(map[string]string{"a": "a"}), "root")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := graph.NewBuilder(fx.Reader(), graph.Options{}).Build(ctx, tip); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBuild_MultiLineMessage(t *testing.T) {
	fx := objtest.New(t)
	tip := fx.Commit(fx.Files(map[string]string{"a": "a"}), "Subject\n\nLonger body\nwith lines")

	g := build(t, fx, tip, graph.Options{})
	c, _ := g.Node(tip)
	if c.Message != "Subject\n\nLonger body\nwith lines" {
		t.Fatalf("Message = %q", c.Message)
	}
	if c.Subject() != "Subject" {
		t.Fatalf("Subject() = %q", c.Subject())
	}
}

func TestCommit_Subject(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{message: "single", want: "single"},
		{message: "first\nsecond", want: "first"},
		{message: "subject\r\n\r\nbody", want: "subject"},
		{message: "", want: ""},
	}
	for _, tt := range tests {
		c := &graph.Commit{Message: tt.message}
		if got := c.Subject(); got != tt.want {
			t.Errorf("Subject() of %q = %q, want %q", tt.message, got, tt.want)
		}
	}
}

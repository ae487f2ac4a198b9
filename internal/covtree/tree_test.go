package covtree

import (
	"reflect"
	"testing"

	"github.com/unbound-force/covtree/internal/model"
)

func file(path string, covered, total uint64) model.FileCoverage {
	return model.FileCoverage{
		Path: path,
		Summary: model.Summary{
			LinesCovered: covered,
			LinesTotal:   total,
		},
	}
}

func TestBuild_RollupSums(t *testing.T) {
	files := []model.FileCoverage{
		file("/src/a/x.src", 3, 4),
		file("/src/a/y.src", 1, 6),
		file("/src/b.src", 2, 2),
	}

	root, diags := Build(files, "/src")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if root.Summary.LinesCovered != 6 || root.Summary.LinesTotal != 12 {
		t.Errorf("root lines = %d/%d, want 6/12",
			root.Summary.LinesCovered, root.Summary.LinesTotal)
	}

	a := findDir(t, root, "a")
	if a.Summary.LinesCovered != 4 || a.Summary.LinesTotal != 10 {
		t.Errorf("a lines = %d/%d, want 4/10",
			a.Summary.LinesCovered, a.Summary.LinesTotal)
	}
}

func TestBuild_DeterministicUnderReordering(t *testing.T) {
	paths := []string{"/src/z.c", "/src/a/m.c", "/src/a/b/n.c", "/src/k.c"}

	build := func(order []int) *Node {
		var files []model.FileCoverage
		for _, i := range order {
			files = append(files, file(paths[i], 1, 2))
		}
		root, _ := Build(files, "/src")
		return root
	}

	first := build([]int{0, 1, 2, 3})
	second := build([]int{3, 2, 1, 0})
	if !reflect.DeepEqual(first, second) {
		t.Error("tree differs when input files are reordered")
	}
}

func TestBuild_ChildrenSortedByName(t *testing.T) {
	files := []model.FileCoverage{
		file("/src/zebra.c", 0, 1),
		file("/src/alpha/q.c", 0, 1),
		file("/src/beta.c", 0, 1),
	}

	root, _ := Build(files, "/src")
	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name())
	}
	want := []string{"alpha", "beta.c", "zebra.c"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("children = %v, want %v", names, want)
	}
}

func TestBuild_ExternalBucket(t *testing.T) {
	files := []model.FileCoverage{
		file("/src/in.c", 1, 1),
		file("/usr/include/out.h", 0, 3),
	}

	root, diags := Build(files, "/src")
	if len(diags) != 1 || diags[0].Code != model.DiagExternalPath {
		t.Fatalf("diagnostics = %v, want one external_path", diags)
	}

	ext := findDir(t, root, ExternalRoot)
	if ext.Summary.LinesTotal != 3 {
		t.Errorf("external lines total = %d, want 3", ext.Summary.LinesTotal)
	}

	// Out-of-root coverage still rolls up into the grand total.
	if root.Summary.LinesTotal != 4 {
		t.Errorf("root lines total = %d, want 4", root.Summary.LinesTotal)
	}
}

func TestBuild_EmptyRootAcceptsRelativePaths(t *testing.T) {
	files := []model.FileCoverage{
		file("pkg/a.c", 1, 1),
		file("/abs/b.c", 1, 1),
	}

	root, diags := Build(files, "")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1 for the absolute path", len(diags))
	}
	if root.Name != "." {
		t.Errorf("root name = %q, want .", root.Name)
	}
	findDir(t, root, "pkg")
	findDir(t, root, ExternalRoot)
}

func TestBuild_WindowsSeparatorsNormalized(t *testing.T) {
	files := []model.FileCoverage{
		file(`C:\work\src\a.c`, 1, 1),
	}

	root, diags := Build(files, `C:\work\src`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := root.FileCount(); got != 1 {
		t.Errorf("file count = %d, want 1", got)
	}
	if root.Children[0].Name() != "a.c" {
		t.Errorf("child = %q, want a.c", root.Children[0].Name())
	}
}

func TestBuild_NoFiles(t *testing.T) {
	root, diags := Build(nil, "/src")
	if len(diags) != 0 || len(root.Children) != 0 {
		t.Errorf("empty input: children = %d, diags = %d", len(root.Children), len(diags))
	}
	if root.Summary != (model.Summary{}) {
		t.Errorf("summary = %+v, want zeroed", root.Summary)
	}
}

func TestFileCount(t *testing.T) {
	files := []model.FileCoverage{
		file("/src/a/x.c", 1, 1),
		file("/src/a/b/y.c", 1, 1),
		file("/src/z.c", 1, 1),
	}
	root, _ := Build(files, "/src")
	if got := root.FileCount(); got != 3 {
		t.Errorf("file count = %d, want 3", got)
	}
}

func findDir(t *testing.T, n *Node, name string) *Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Dir != nil && c.Dir.Name == name {
			return c.Dir
		}
	}
	t.Fatalf("directory %q not found under %q", name, n.Name)
	return nil
}

// Package covtree groups per-file coverage records into a directory
// tree with bottom-up summary rollups. The tree is built once per
// report and immutable afterward; this package exclusively owns the
// nodes it returns.
package covtree

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/unbound-force/covtree/internal/model"
)

// ExternalRoot is the synthetic top-level segment for files whose
// paths cannot be related to the configured source root. Bucketing
// them keeps their coverage in the report instead of dropping it.
const ExternalRoot = "(external)"

// PathError reports a file path that does not share the source root
// prefix. Recovered: the file is bucketed under ExternalRoot.
type PathError struct {
	Path string
	Root string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q is outside source root %q", e.Path, e.Root)
}

// Node is an interior directory node. Children are ordered
// lexicographically by name segment, so output is deterministic
// regardless of the order files were resolved.
type Node struct {
	// Name is the path segment this node represents. The root node
	// carries the source root itself.
	Name string `json:"name"`

	// Children holds subdirectories and files in name order.
	Children []Child `json:"children"`

	// Summary is the element-wise sum of all descendant file
	// summaries, computed once in a single post-order pass.
	Summary model.Summary `json:"summary"`
}

// Child is the discriminated variant over the two shapes a directory
// can contain. Exactly one of Dir and File is non-nil.
type Child struct {
	Dir  *Node
	File *model.FileCoverage
}

// Name returns the child's path segment.
func (c Child) Name() string {
	if c.Dir != nil {
		return c.Dir.Name
	}
	return path.Base(c.File.Path)
}

// Summary returns the child's rolled-up or per-file summary.
func (c Child) Summary() model.Summary {
	if c.Dir != nil {
		return c.Dir.Summary
	}
	return c.File.Summary
}

// MarshalJSON emits a kind-tagged object so renderers can walk the
// tree without type switches.
func (c Child) MarshalJSON() ([]byte, error) {
	if c.Dir != nil {
		return json.Marshal(struct {
			Kind string `json:"kind"`
			*Node
		}{Kind: "dir", Node: c.Dir})
	}
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
		*model.FileCoverage
	}{Kind: "file", Name: c.Name(), FileCoverage: c.File})
}

// FileCount returns the number of file leaves under the node.
func (n *Node) FileCount() int {
	count := 0
	for _, c := range n.Children {
		if c.Dir != nil {
			count += c.Dir.FileCount()
			continue
		}
		count++
	}
	return count
}

// Build groups files by directory relative to sourceRoot and rolls
// summaries up bottom-up. Files outside the root are kept under the
// synthetic external bucket, each with a PathError diagnostic.
func Build(files []model.FileCoverage, sourceRoot string) (*Node, []model.Diagnostic) {
	root := newBucket()
	var diags []model.Diagnostic

	cleanRoot := normalize(sourceRoot)

	for i := range files {
		fc := &files[i]
		rel, ok := relativize(normalize(fc.Path), cleanRoot)
		if !ok {
			err := &PathError{Path: fc.Path, Root: sourceRoot}
			diags = append(diags, model.Diagnostic{
				Code:   model.DiagExternalPath,
				Path:   fc.Path,
				Detail: err.Error(),
			})
			root.child(ExternalRoot).insert(splitPath(strings.TrimPrefix(normalize(fc.Path), "/")), fc)
			continue
		}
		root.insert(splitPath(rel), fc)
	}

	name := cleanRoot
	if name == "" {
		name = "."
	}
	return root.freeze(name), diags
}

// bucket is the mutable shape used during construction; freeze turns
// it into an immutable Node.
type bucket struct {
	dirs  map[string]*bucket
	files []*model.FileCoverage
}

func newBucket() *bucket {
	return &bucket{dirs: make(map[string]*bucket)}
}

func (b *bucket) child(name string) *bucket {
	c, ok := b.dirs[name]
	if !ok {
		c = newBucket()
		b.dirs[name] = c
	}
	return c
}

func (b *bucket) insert(segments []string, fc *model.FileCoverage) {
	if len(segments) <= 1 {
		b.files = append(b.files, fc)
		return
	}
	b.child(segments[0]).insert(segments[1:], fc)
}

// freeze produces the immutable node: children sorted by name, then
// the summary rollup. Post-order: children freeze (and sum) first.
func (b *bucket) freeze(name string) *Node {
	n := &Node{Name: name}

	for dirName, sub := range b.dirs {
		n.Children = append(n.Children, Child{Dir: sub.freeze(dirName)})
	}
	for _, fc := range b.files {
		n.Children = append(n.Children, Child{File: fc})
	}

	sort.Slice(n.Children, func(i, j int) bool {
		a, z := n.Children[i], n.Children[j]
		if a.Name() != z.Name() {
			return a.Name() < z.Name()
		}
		// A file and a directory can share a name; directories first.
		return a.Dir != nil && z.Dir == nil
	})

	for _, c := range n.Children {
		n.Summary.Add(c.Summary())
	}
	return n
}

// relativize strips the source root prefix. An empty root accepts
// every relative path; absolute paths need the root prefix.
func relativize(p, root string) (string, bool) {
	if root == "" {
		if strings.HasPrefix(p, "/") {
			return "", false
		}
		return p, true
	}
	if p == root {
		return path.Base(p), true
	}
	if strings.HasPrefix(p, root+"/") {
		return strings.TrimPrefix(p, root+"/"), true
	}
	return "", false
}

// normalize cleans a path and forces forward slashes so exports
// written on any platform compare consistently.
func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return cleaned
}

func splitPath(p string) []string {
	return strings.Split(p, "/")
}

package book

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Node is one entry in the navigation tree. Only markdown files and the
// directories that (transitively) contain them appear.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"` // book-relative, forward slashes
	Type     string  `json:"type"` // "dir" or "file"
	Children []*Node `json:"children,omitempty"`
}

// BuildTree scans the book directory and arranges its markdown files
// into a nested tree. Directories sort before files and README.md sorts
// first within a directory, the way a reader expects to enter it.
func BuildTree(rootAbs string) (*Node, error) {
	files, err := scanMarkdown(rootAbs)
	if err != nil {
		return nil, err
	}

	root := &Node{Name: path.Base(filepath.ToSlash(rootAbs)), Path: "", Type: "dir"}
	dirs := map[string]*Node{"": root}

	ensureDir := func(rel string) *Node {
		if n, ok := dirs[rel]; ok {
			return n
		}
		// Create missing ancestors top-down.
		var build func(rel string) *Node
		build = func(rel string) *Node {
			if n, ok := dirs[rel]; ok {
				return n
			}
			parentRel := path.Dir(rel)
			if parentRel == "." {
				parentRel = ""
			}
			parent := build(parentRel)
			n := &Node{Name: path.Base(rel), Path: rel, Type: "dir"}
			parent.Children = append(parent.Children, n)
			dirs[rel] = n
			return n
		}
		return build(rel)
	}

	for _, f := range files {
		dirRel := path.Dir(f)
		if dirRel == "." {
			dirRel = ""
		}
		parent := ensureDir(dirRel)
		parent.Children = append(parent.Children, &Node{Name: path.Base(f), Path: f, Type: "file"})
	}

	sortTree(root)
	return root, nil
}

func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Type != b.Type {
			return a.Type == "dir"
		}
		if a.Type == "file" {
			ar := strings.EqualFold(a.Name, "README.md")
			br := strings.EqualFold(b.Name, "README.md")
			if ar != br {
				return ar
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		if c.Type == "dir" {
			sortTree(c)
		}
	}
}

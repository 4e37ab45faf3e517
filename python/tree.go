// Package python parses Python source into a syntax tree and infers
// static types for its variables.
package python

import (
	"context"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"
	sitterpython "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/tminor/lspytype/widget"
)

var log = logging.MustGetLogger("lspytype.python")

var language = sitter.NewLanguage(sitterpython.Language())

// Tree is a parsed Python module. Unlike tree-sitter trees it holds no C
// memory, so it can be cached and shared between goroutines.
type Tree struct {
	Root *Node
	src  []byte
}

// Node is one node of the concrete syntax tree.
type Node struct {
	// Type is the tree-sitter grammar type, e.g. "identifier" or "assignment".
	Type string
	// Field is the field name under which the parent holds this node, if any.
	Field    string
	Named    bool
	Begin    int
	End      int
	Children []*Node

	parent *Node
	tree   *Tree
}

// Parse parses src. The tree keeps a reference to src, which must not be
// modified afterwards. Cancelling ctx aborts the parse.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return nil, errors.Wrap(err, "loading python grammar")
	}

	length := len(src)
	parsed := parser.ParseWithOptions(func(i int, _ sitter.Point) []byte {
		if i < length {
			return src[i:]
		}
		return []byte{}
	}, nil, &sitter.ParseOptions{
		ProgressCallback: func(sitter.ParseState) bool {
			return ctx.Err() != nil
		},
	})
	if parsed == nil {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "parse cancelled")
		}
		return nil, errors.New("parser returned no tree")
	}
	defer parsed.Close()

	tree := &Tree{src: src}
	tree.Root = tree.copyNode(parsed.RootNode(), nil, "")
	if tree.Root.hasError() {
		log.Debugf("python source has syntax errors")
	}
	return tree, nil
}

func (tree *Tree) copyNode(source *sitter.Node, parent *Node, field string) *Node {
	node := &Node{
		Type:   source.Kind(),
		Field:  field,
		Named:  source.IsNamed(),
		Begin:  int(source.StartByte()),
		End:    int(source.EndByte()),
		parent: parent,
		tree:   tree,
	}
	if source.IsError() || source.IsMissing() {
		node.Type = errorType
	}

	count := source.ChildCount()
	if count > 0 {
		node.Children = make([]*Node, 0, count)
	}
	for i := uint(0); i < count; i++ {
		child := source.Child(i)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, tree.copyNode(child, node, source.FieldNameForChild(uint32(i))))
	}
	return node
}

const errorType = "ERROR"

// Source returns the text the tree was parsed from.
func (tree *Tree) Source() []byte {
	return tree.src
}

// NodeAt implements widget.Tree
func (tree *Tree) NodeAt(offset int) widget.Node {
	if node := tree.Find(offset); node != nil {
		return node
	}
	return nil
}

// Find returns the smallest node whose range contains offset, or nil.
func (tree *Tree) Find(offset int) *Node {
	if tree.Root == nil || !tree.Root.Contains(offset) {
		return nil
	}
	current := tree.Root
descend:
	for {
		for _, child := range current.Children {
			if child.Contains(offset) {
				current = child
				continue descend
			}
		}
		return current
	}
}

// Contains reports whether offset lies in [Begin, End).
func (node *Node) Contains(offset int) bool {
	return node.Begin <= offset && offset < node.End
}

// Range implements widget.Node
func (node *Node) Range() (int, int) {
	return node.Begin, node.End
}

// Parent implements widget.Node
func (node *Node) Parent() widget.Node {
	if node.parent == nil {
		return nil
	}
	return node.parent
}

// Up returns the parent node, or nil at the root.
func (node *Node) Up() *Node {
	return node.parent
}

func (node *Node) Text() string {
	return string(node.tree.src[node.Begin:node.End])
}

// Child returns the first child held under field, or nil.
func (node *Node) Child(field string) *Node {
	for _, child := range node.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// NamedChildren returns the named children, skipping comments.
func (node *Node) NamedChildren() []*Node {
	var children []*Node
	for _, child := range node.Children {
		if child.Named && child.Type != "comment" {
			children = append(children, child)
		}
	}
	return children
}

// Is reports whether node is non-nil and of one of the given types.
func (node *Node) Is(types ...string) bool {
	if node == nil {
		return false
	}
	for _, t := range types {
		if node.Type == t {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest strict ancestor of one of the given types.
func (node *Node) Ancestor(types ...string) *Node {
	for current := node.parent; current != nil; current = current.parent {
		if current.Is(types...) {
			return current
		}
	}
	return nil
}

// Errors returns the outermost nodes the parser could not make sense of,
// including zero-width nodes it inserted for missing tokens.
func (tree *Tree) Errors() []*Node {
	var errs []*Node
	Inspect(tree.Root, func(node *Node) bool {
		if node.Type == errorType {
			errs = append(errs, node)
			return false
		}
		return true
	})
	return errs
}

func (node *Node) hasError() bool {
	if node.Type == errorType {
		return true
	}
	for _, child := range node.Children {
		if child.hasError() {
			return true
		}
	}
	return false
}

// Inspect traverses the tree in depth-first order. If f returns false the
// children of that node are skipped.
func Inspect(node *Node, f func(*Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, child := range node.Children {
		Inspect(child, f)
	}
}

package widget

import (
	"context"
)

// Kind tags a syntax node for the purpose of variable lookup. Only two
// kinds matter here; every other node of the underlying parser is
// KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindReference
	KindAssignmentTarget
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "Reference"
	case KindAssignmentTarget:
		return "AssignmentTarget"
	default:
		return "Other"
	}
}

// DocumentID identifies a document in the host, e.g. its URI.
type DocumentID string

// Node is a syntax node owned by the parser.
type Node interface {
	Kind() Kind
	// Range is the half-open byte range [start, end) of the node.
	Range() (start int, end int)
	// Parent returns nil at the root.
	Parent() Node
}

// Tree is a parsed document.
type Tree interface {
	// NodeAt returns the smallest node whose range contains offset, or nil.
	NodeAt(offset int) Node
}

// Documents hands out parsed representations of host documents.
type Documents interface {
	// ParsedDocument returns nil when the document has no parsed
	// representation (unknown document, unsupported language).
	ParsedDocument(ctx context.Context, document DocumentID) Tree
}

// Type is an inferred type.
type Type interface {
	Name() string
}

type AnalysisMode int

const (
	// StaticAnalysis infers types from code without executing it.
	StaticAnalysis AnalysisMode = iota
)

// AnalysisContext scopes a type query.
type AnalysisContext struct {
	Document DocumentID
	Mode     AnalysisMode
}

// Inferrer is the type-inference provider. A nil Type means the type is
// unknown.
type Inferrer interface {
	InferType(ctx context.Context, node Node, analysis AnalysisContext) (Type, error)
}

// FindEnclosing walks from node (inclusive) towards the root and returns
// the first node whose kind is one of kinds.
func FindEnclosing(node Node, kinds ...Kind) Node {
	for ; node != nil; node = node.Parent() {
		kind := node.Kind()
		for _, k := range kinds {
			if kind == k {
				return node
			}
		}
	}
	return nil
}

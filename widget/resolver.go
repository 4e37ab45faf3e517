package widget

import (
	"context"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("lspytype.widget")

// Status texts.
const (
	NoPSI        = "No PSI"
	NoElement    = "No element"
	NotAVariable = "Not a variable"
	UnknownType  = "Type: unknown"

	typePrefix = "Type: "
)

// TypeText renders a type name as status text.
func TypeText(name string) string {
	if name == "" {
		return UnknownType
	}
	return typePrefix + name
}

// IsTypeText reports whether text is a resolved type, known or not.
func IsTypeText(text string) bool {
	return strings.HasPrefix(text, typePrefix)
}

// Resolver maps caret positions to status texts.
type Resolver struct {
	documents  Documents
	inferrer   Inferrer
	dispatcher Dispatcher
	repaint    func()
	state      *displayState
}

// NewResolver creates a resolver. repaint is invoked through dispatcher
// after every resolution.
func NewResolver(documents Documents, inferrer Inferrer, dispatcher Dispatcher, repaint func()) *Resolver {
	if dispatcher == nil {
		dispatcher = Immediate
	}
	if repaint == nil {
		repaint = func() {}
	}
	return &Resolver{
		documents:  documents,
		inferrer:   inferrer,
		dispatcher: dispatcher,
		repaint:    repaint,
		state:      newDisplayState(),
	}
}

// Text returns the current status text.
func (resolver *Resolver) Text() string {
	return resolver.state.load()
}

// OnCaretMoved resolves the status text for the caret position, stores
// it and requests a repaint. A resolution that finishes after a later
// caret event has already been stored is discarded.
func (resolver *Resolver) OnCaretMoved(ctx context.Context, document DocumentID, offset int) {
	seq := resolver.state.next()
	text := resolver.Resolve(ctx, document, offset)
	if !resolver.state.store(seq, text) {
		log.Debugf("dropping stale status for %s@%d: %q", document, offset, text)
	}
	resolver.dispatcher.InvokeLater(resolver.repaint)
}

// Resolve computes the status text for a position without storing it.
func (resolver *Resolver) Resolve(ctx context.Context, document DocumentID, offset int) string {
	var tree Tree
	if resolver.documents != nil {
		tree = resolver.documents.ParsedDocument(ctx, document)
	}
	if tree == nil {
		return NoPSI
	}

	if offset < 0 {
		return NoElement
	}
	leaf := tree.NodeAt(offset)
	if leaf == nil {
		return NoElement
	}

	variable := FindEnclosing(leaf, KindReference, KindAssignmentTarget)
	if variable == nil {
		return NotAVariable
	}

	name, err := resolver.typeName(ctx, document, variable)
	if err != nil {
		log.Debugf("type of %s@%d: %s", document, offset, err.Error())
		return UnknownType
	}
	return TypeText(name)
}

func (resolver *Resolver) typeName(ctx context.Context, document DocumentID, node Node) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("type inference panicked: %v", r)
		}
	}()

	if resolver.inferrer == nil {
		return "", nil
	}

	analysis := AnalysisContext{Document: document, Mode: StaticAnalysis}
	type_, err := resolver.inferrer.InferType(ctx, node, analysis)
	if err != nil {
		return "", errors.Wrap(err, "type inference")
	}
	if type_ == nil {
		return "", nil
	}
	return type_.Name(), nil
}

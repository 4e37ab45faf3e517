package implementation

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspytype/python"
	"github.com/tminor/lspytype/widget"
)

// TextDocumentHover implements protocol.TextDocumentHoverFunc
func TextDocumentHover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	content, ok := getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset := newLineIndex(content).offset(params.Position)

	text := currentResolver().Resolve(contextpkg.Background(), widget.DocumentID(params.TextDocument.URI), offset)
	if !widget.IsTypeText(text) {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: text,
		},
	}, nil
}

// TextDocumentDefinition implements protocol.TextDocumentDefinitionFunc
func TextDocumentDefinition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	ctx := contextpkg.Background()
	documentState := validateDocumentState(ctx, params.TextDocument.URI, context.Notify)
	if documentState == nil {
		return nil, nil
	}

	variable := variableAt(documentState, params.Position)
	if variable == nil {
		return nil, nil
	}
	definition := newEngine().Definition(ctx, variable)
	if definition == nil {
		return nil, nil
	}

	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: documentState.Lines.rangeOf(definition.Range()),
	}, nil
}

// TextDocumentDocumentSymbol implements protocol.TextDocumentDocumentSymbolFunc
func TextDocumentDocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	ctx := contextpkg.Background()
	documentState := validateDocumentState(ctx, params.TextDocument.URI, context.Notify)
	if documentState == nil || documentState.Tree.Root == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return createSymbols(ctx, documentState), nil
}

// variableAt returns the innermost variable node at position.
func variableAt(documentState *DocumentState, position protocol.Position) *python.Node {
	offset := documentState.Lines.offset(position)
	if offset < 0 {
		return nil
	}
	leaf := documentState.Tree.Find(offset)
	if leaf == nil {
		return nil
	}
	if variable, ok := widget.FindEnclosing(leaf, widget.KindReference, widget.KindAssignmentTarget).(*python.Node); ok {
		return variable
	}
	return nil
}

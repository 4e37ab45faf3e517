package implementation

import (
	contextpkg "context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspytype/python"
	"github.com/tminor/lspytype/widget"
)

// symbolBuilder collects the outline of a module: classes, functions and
// the first binding of every variable in each scope.
type symbolBuilder struct {
	context contextpkg.Context
	engine  *python.Engine
	lines   *lineIndex
}

func createSymbols(context contextpkg.Context, documentState *DocumentState) []protocol.DocumentSymbol {
	builder := symbolBuilder{
		context: context,
		engine:  newEngine(),
		lines:   documentState.Lines,
	}
	return builder.scope(documentState.Tree.Root, false)
}

func (builder *symbolBuilder) scope(body *python.Node, inClass bool) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	seen := make(map[string]bool)
	builder.walk(body, inClass, seen, &symbols)
	return symbols
}

func (builder *symbolBuilder) walk(node *python.Node, inClass bool, seen map[string]bool, symbols *[]protocol.DocumentSymbol) {
	for _, child := range node.Children {
		switch {
		case child.Is("function_definition"):
			kind := protocol.SymbolKindFunction
			if inClass {
				kind = protocol.SymbolKindMethod
			}
			if symbol, ok := builder.definition(child, kind, false); ok {
				*symbols = append(*symbols, symbol)
			}

		case child.Is("class_definition"):
			if symbol, ok := builder.definition(child, protocol.SymbolKindClass, true); ok {
				*symbols = append(*symbols, symbol)
			}

		case child.Is("lambda"), child.Is(comprehensions...):

		case child.Is("identifier") && child.Kind() == widget.KindAssignmentTarget:
			name := child.Text()
			if seen[name] {
				continue
			}
			seen[name] = true
			kind := protocol.SymbolKindVariable
			if inClass {
				kind = protocol.SymbolKindField
			}
			*symbols = append(*symbols, builder.variable(child, name, kind))

		default:
			builder.walk(child, inClass, seen, symbols)
		}
	}
}

var comprehensions = []string{
	"list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression",
}

func (builder *symbolBuilder) definition(node *python.Node, kind protocol.SymbolKind, class bool) (protocol.DocumentSymbol, bool) {
	name := node.Child("name")
	if name == nil {
		return protocol.DocumentSymbol{}, false
	}

	symbol := protocol.DocumentSymbol{
		Name:           name.Text(),
		Kind:           kind,
		Range:          builder.lines.rangeOf(node.Range()),
		SelectionRange: builder.lines.rangeOf(name.Range()),
	}
	if parameters := node.Child("parameters"); parameters != nil {
		detail := parameters.Text()
		symbol.Detail = &detail
	}
	if body := node.Child("body"); body != nil {
		symbol.Children = builder.scope(body, class)
	}
	return symbol, true
}

func (builder *symbolBuilder) variable(node *python.Node, name string, kind protocol.SymbolKind) protocol.DocumentSymbol {
	symbol := protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          builder.lines.rangeOf(node.Range()),
		SelectionRange: builder.lines.rangeOf(node.Range()),
	}
	if type_, err := builder.engine.Infer(builder.context, node); err == nil && type_ != nil {
		detail := type_.Name()
		symbol.Detail = &detail
	}
	return symbol
}

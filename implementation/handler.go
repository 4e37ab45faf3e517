package implementation

import (
	contextpkg "context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspytype/widget"
)

// Handler serves the standard protocol methods.
var Handler protocol.Handler

func init() {
	Handler = protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		Exit:        Exit,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   TextDocumentDidOpen,
		TextDocumentDidChange: TextDocumentDidChange,
		TextDocumentDidSave:   TextDocumentDidSave,
		TextDocumentDidClose:  TextDocumentDidClose,

		TextDocumentHover:          TextDocumentHover,
		TextDocumentDefinition:     TextDocumentDefinition,
		TextDocumentDocumentSymbol: TextDocumentDocumentSymbol,
	}
}

// NewHandler returns the handler to serve: Handler plus the widget's
// custom methods.
func NewHandler() glsp.Handler {
	return router{}
}

type router struct{}

// Handle implements glsp.Handler
func (router) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	switch context.Method {
	case MethodCaretMoved:
		validMethod = true
		var params protocol.TextDocumentPositionParams
		if err = json.Unmarshal(context.Params, &params); err == nil {
			validParams = true
			err = CaretMoved(context, &params)
		}
		return

	case MethodWidget:
		validMethod = true
		validParams = true
		r, err = WidgetRequest(context)
		return
	}

	return Handler.Handle(context)
}

// CaretMoved handles the lspytype/caretMoved notification.
func CaretMoved(context *glsp.Context, params *protocol.TextDocumentPositionParams) error {
	offset := -1
	if content, ok := getDocument(params.TextDocument.URI); ok {
		offset = newLineIndex(content).offset(params.Position)
	}
	carets.fire(contextpkg.Background(), widget.CaretEvent{
		Document: widget.DocumentID(params.TextDocument.URI),
		Offset:   offset,
	})
	return nil
}

// WidgetRequest handles the lspytype/widget request.
func WidgetRequest(context *glsp.Context) (*WidgetStatus, error) {
	w := currentWidget()
	if w == nil {
		return nil, errors.New("no widget: server not initialized")
	}
	return statusOf(w), nil
}

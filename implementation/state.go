package implementation

import (
	contextpkg "context"
	"sync"
	"sync/atomic"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/kutil/util"

	"github.com/tminor/lspytype/python"
	"github.com/tminor/lspytype/widget"
)

// DocumentState is derived from one revision of a document's text.
type DocumentState struct {
	Revision    uint64
	Tree        *python.Tree
	Lines       *lineIndex
	Diagnostics []protocol.Diagnostic

	published atomic.Bool
}

var documentStates sync.Map // protocol.DocumentUri to *DocumentState

// validateDocumentState returns the state of a Python document, parsing it
// when the cached state is missing or stale. Diagnostics are published once
// per state when notify is set. Non-Python documents have no state.
func validateDocumentState(context contextpkg.Context, uri protocol.DocumentUri, notify glsp.NotifyFunc) *DocumentState {
	document, ok := documents.get(uri)
	if !ok || !currentSettings().IsPython(document.LanguageID, uri) {
		return nil
	}

	documentState := _getOrCreateDocumentState(context, document)
	if documentState == nil {
		return nil
	}
	if notify != nil && documentState.published.CompareAndSwap(false, true) {
		go notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: documentState.Diagnostics,
		})
	}
	return documentState
}

func deleteDocumentState(uri protocol.DocumentUri) {
	documentStates.Delete(uri)
}

func _getOrCreateDocumentState(context contextpkg.Context, document *document) *DocumentState {
	if existing, ok := documentStates.Load(document.URI); ok {
		if documentState := existing.(*DocumentState); documentState.Revision >= document.Revision {
			return documentState
		}
	}

	documentState := _createDocumentState(context, document)
	if documentState == nil {
		return nil
	}
	for {
		existing, loaded := documentStates.LoadOrStore(document.URI, documentState)
		if !loaded {
			return documentState
		}
		if existingState := existing.(*DocumentState); existingState.Revision >= documentState.Revision {
			return existingState
		}
		if documentStates.CompareAndSwap(document.URI, existing, documentState) {
			return documentState
		}
	}
}

func _createDocumentState(context contextpkg.Context, document *document) *DocumentState {
	tree, err := python.Parse(context, util.StringToBytes(document.Content))
	if err != nil {
		log.Errorf("parsing %s: %s", document.URI, err.Error())
		return nil
	}

	documentState := DocumentState{
		Revision: document.Revision,
		Tree:     tree,
		Lines:    newLineIndex(document.Content),
	}
	documentState.Diagnostics = createDiagnostics(tree, documentState.Lines)
	return &documentState
}

func createDiagnostics(tree *python.Tree, lines *lineIndex) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := serverName
	for _, node := range tree.Errors() {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    lines.rangeOf(node.Begin, node.End),
			Severity: &severity,
			Source:   &source,
			Message:  "syntax error",
		})
	}
	return diagnostics
}

// parsedDocuments gives the widget access to the document states.
type parsedDocuments struct{}

// ParsedDocument implements widget.Documents
func (parsedDocuments) ParsedDocument(context contextpkg.Context, id widget.DocumentID) widget.Tree {
	if documentState := validateDocumentState(context, protocol.DocumentUri(id), nil); documentState != nil {
		return documentState.Tree
	}
	return nil
}

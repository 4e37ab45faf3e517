package implementation

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TextDocumentDidOpen implements protocol.TextDocumentDidOpenFunc
func TextDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s (%s)", params.TextDocument.URI, params.TextDocument.LanguageID)
	documents.set(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Text)
	deleteDocumentState(params.TextDocument.URI)
	go validateDocumentState(contextpkg.Background(), params.TextDocument.URI, context.Notify)
	return nil
}

// TextDocumentDidChange implements protocol.TextDocumentDidChangeFunc
func TextDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	content, ok := getDocument(uri)
	if !ok {
		log.Warningf("change to unopened document %s", uri)
		return nil
	}

	documents.update(uri, applyContentChanges(content, params.ContentChanges))
	deleteDocumentState(uri)
	go validateDocumentState(contextpkg.Background(), uri, context.Notify)
	return nil
}

// applyContentChanges applies changes in order. A change without a range
// replaces the whole text.
func applyContentChanges(content string, changes []any) string {
	for _, change := range changes {
		switch change_ := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if change_.Range == nil {
				content = change_.Text
				break
			}
			start, end := change_.Range.IndexesIn(content)
			if end < start {
				start, end = end, start
			}
			content = content[:start] + change_.Text + content[end:]
		case protocol.TextDocumentContentChangeEventWhole:
			content = change_.Text
		default:
			log.Warningf("unsupported content change %T", change)
		}
	}
	return content
}

// TextDocumentDidSave implements protocol.TextDocumentDidSaveFunc
func TextDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

// TextDocumentDidClose implements protocol.TextDocumentDidCloseFunc
func TextDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	deleteDocumentState(params.TextDocument.URI)
	documents.delete(params.TextDocument.URI)

	go context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

package implementation

import (
	"sort"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// documentStore holds opened documents.
type documentStore struct {
	lock      sync.RWMutex
	documents map[protocol.DocumentUri]*document
	revision  uint64
}

// document is a snapshot of an opened text document.
type document struct {
	URI        protocol.DocumentUri
	LanguageID string
	Content    string
	// Revision increases with every change to any document.
	Revision uint64
}

var documents = newDocumentStore()

func newDocumentStore() *documentStore {
	return &documentStore{documents: make(map[protocol.DocumentUri]*document)}
}

func (store *documentStore) set(uri protocol.DocumentUri, languageID string, content string) {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.revision++
	store.documents[uri] = &document{
		URI:        uri,
		LanguageID: languageID,
		Content:    content,
		Revision:   store.revision,
	}
}

// update replaces the content of an opened document, keeping its language.
func (store *documentStore) update(uri protocol.DocumentUri, content string) bool {
	store.lock.Lock()
	defer store.lock.Unlock()
	current, ok := store.documents[uri]
	if !ok {
		return false
	}
	store.revision++
	store.documents[uri] = &document{
		URI:        uri,
		LanguageID: current.LanguageID,
		Content:    content,
		Revision:   store.revision,
	}
	return true
}

func (store *documentStore) get(uri protocol.DocumentUri) (*document, bool) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	document, ok := store.documents[uri]
	return document, ok
}

func (store *documentStore) delete(uri protocol.DocumentUri) {
	store.lock.Lock()
	defer store.lock.Unlock()
	delete(store.documents, uri)
}

func getDocument(uri protocol.DocumentUri) (string, bool) {
	if document, ok := documents.get(uri); ok {
		return document.Content, true
	}
	return "", false
}

// lineIndex converts between byte offsets and LSP positions, which count
// UTF-16 code units within a line.
type lineIndex struct {
	content string
	starts  []int
}

func newLineIndex(content string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{content: content, starts: starts}
}

func (index *lineIndex) lineEnd(line int) int {
	if line+1 < len(index.starts) {
		return index.starts[line+1] - 1
	}
	return len(index.content)
}

// offset returns the byte offset of position, or -1 when the position is
// past the end of its line or of the document.
func (index *lineIndex) offset(position protocol.Position) int {
	line := int(position.Line)
	if line >= len(index.starts) {
		return -1
	}
	offset, end := index.starts[line], index.lineEnd(line)
	for units := protocol.UInteger(0); units < position.Character; {
		if offset >= end {
			return -1
		}
		r, size := utf8.DecodeRuneInString(index.content[offset:end])
		units += protocol.UInteger(runeUnits(r))
		offset += size
	}
	return offset
}

func (index *lineIndex) position(offset int) protocol.Position {
	if offset > len(index.content) {
		offset = len(index.content)
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.SearchInts(index.starts, offset+1) - 1
	var character protocol.UInteger
	for _, r := range index.content[index.starts[line]:offset] {
		character += protocol.UInteger(runeUnits(r))
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: character}
}

func (index *lineIndex) rangeOf(begin int, end int) protocol.Range {
	return protocol.Range{Start: index.position(begin), End: index.position(end)}
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

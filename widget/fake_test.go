package widget

import (
	"context"
	"sync"
)

type fakeNode struct {
	name     string
	kind     Kind
	start    int
	end      int
	parent   *fakeNode
	children []*fakeNode
}

func node(name string, kind Kind, start int, end int, children ...*fakeNode) *fakeNode {
	n := &fakeNode{name: name, kind: kind, start: start, end: end, children: children}
	for _, child := range children {
		child.parent = n
	}
	return n
}

func (n *fakeNode) Kind() Kind {
	return n.kind
}

func (n *fakeNode) Range() (int, int) {
	return n.start, n.end
}

func (n *fakeNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

type fakeTree struct {
	root *fakeNode
}

func (t *fakeTree) NodeAt(offset int) Node {
	if t.root == nil || offset < t.root.start || offset >= t.root.end {
		return nil
	}
	current := t.root
descend:
	for {
		for _, child := range current.children {
			if child.start <= offset && offset < child.end {
				current = child
				continue descend
			}
		}
		return current
	}
}

type fakeDocuments map[DocumentID]*fakeTree

func (d fakeDocuments) ParsedDocument(ctx context.Context, document DocumentID) Tree {
	if tree, ok := d[document]; ok {
		return tree
	}
	return nil
}

type fakeType string

func (t fakeType) Name() string {
	return string(t)
}

// fakeInferrer answers from a table keyed by node name.
type fakeInferrer struct {
	types map[string]string
	err   error
	panic bool
	// block, when set for a node name, is waited on before answering.
	block   map[string]chan struct{}
	entered chan string
}

func (f *fakeInferrer) InferType(ctx context.Context, n Node, analysis AnalysisContext) (Type, error) {
	name := n.(*fakeNode).name
	if f.entered != nil {
		f.entered <- name
	}
	if ch, ok := f.block[name]; ok {
		<-ch
	}
	if f.panic {
		panic("engine failure")
	}
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.types[name]; ok {
		return fakeType(t), nil
	}
	return nil, nil
}

type fakeCarets struct {
	mu        sync.Mutex
	listeners map[int]CaretListener
	nextID    int
}

func (c *fakeCarets) AddCaretListener(listener CaretListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listeners == nil {
		c.listeners = make(map[int]CaretListener)
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = listener
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *fakeCarets) move(document DocumentID, offset int) {
	c.mu.Lock()
	listeners := make([]CaretListener, 0, len(c.listeners))
	for _, listener := range c.listeners {
		listeners = append(listeners, listener)
	}
	c.mu.Unlock()
	for _, listener := range listeners {
		listener.CaretPositionChanged(context.Background(), CaretEvent{Document: document, Offset: offset})
	}
}

func (c *fakeCarets) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

type fakeStatusBar struct {
	mu      sync.Mutex
	updates []string
}

func (s *fakeStatusBar) UpdateWidget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, id)
}

// queueDispatcher defers functions until flush, like a UI event queue.
type queueDispatcher struct {
	mu      sync.Mutex
	pending []func()
}

func (q *queueDispatcher) InvokeLater(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, f)
}

func (q *queueDispatcher) flush() int {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, f := range pending {
		f()
	}
	return len(pending)
}

// assignmentTree is "x = 1".
func assignmentTree() *fakeTree {
	return &fakeTree{root: node("module", KindOther, 0, 5,
		node("statement", KindOther, 0, 5,
			node("assignment", KindOther, 0, 5,
				node("x", KindAssignmentTarget, 0, 1),
				node("=", KindOther, 2, 3),
				node("1", KindOther, 4, 5),
			),
		),
	)}
}

// attributeTree is "a.b = 1": the reference a is nested in the target a.b.
func attributeTree() *fakeTree {
	return &fakeTree{root: node("module", KindOther, 0, 7,
		node("assignment", KindOther, 0, 7,
			node("a.b", KindAssignmentTarget, 0, 3,
				node("a", KindReference, 0, 1),
				node(".", KindOther, 1, 2),
				node("b", KindOther, 2, 3),
			),
			node("=", KindOther, 4, 5),
			node("1", KindOther, 6, 7),
		),
	)}
}

// referenceTree is "y".
func referenceTree() *fakeTree {
	return &fakeTree{root: node("module", KindOther, 0, 1,
		node("y", KindReference, 0, 1),
	)}
}

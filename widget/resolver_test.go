package widget

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(inferrer *fakeInferrer) *Resolver {
	documents := fakeDocuments{
		"assign.py":    assignmentTree(),
		"attribute.py": attributeTree(),
		"reference.py": referenceTree(),
		"empty.py":     &fakeTree{root: node("module", KindOther, 0, 0)},
	}
	return NewResolver(documents, inferrer, Immediate, nil)
}

func TestResolve(t *testing.T) {
	inferrer := &fakeInferrer{types: map[string]string{
		"x":   "int",
		"a":   "Point",
		"a.b": "float",
	}}
	resolver := newTestResolver(inferrer)
	ctx := context.Background()

	tests := []struct {
		document DocumentID
		offset   int
		want     string
	}{
		{"assign.py", 0, "Type: int"},
		{"assign.py", 2, NotAVariable},
		{"assign.py", 1, NotAVariable},
		{"assign.py", 4, NotAVariable},
		{"assign.py", 5, NoElement},
		{"assign.py", 100, NoElement},
		{"assign.py", -1, NoElement},
		{"empty.py", 0, NoElement},
		{"notes.txt", 0, NoPSI},
		{"notes.txt", -1, NoPSI},
		{"reference.py", 0, UnknownType},
		{"attribute.py", 0, "Type: Point"},
		{"attribute.py", 2, "Type: float"},
		{"attribute.py", 1, "Type: float"},
		{"attribute.py", 4, NotAVariable},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s@%d", test.document, test.offset), func(t *testing.T) {
			assert.Equal(t, test.want, resolver.Resolve(ctx, test.document, test.offset))
		})
	}
}

func TestResolveEngineFailures(t *testing.T) {
	ctx := context.Background()

	resolver := newTestResolver(&fakeInferrer{err: fmt.Errorf("engine down")})
	assert.Equal(t, UnknownType, resolver.Resolve(ctx, "assign.py", 0))

	resolver = newTestResolver(&fakeInferrer{panic: true})
	assert.Equal(t, UnknownType, resolver.Resolve(ctx, "assign.py", 0))

	resolver = newTestResolver(&fakeInferrer{types: map[string]string{"x": ""}})
	assert.Equal(t, UnknownType, resolver.Resolve(ctx, "assign.py", 0))

	resolver = NewResolver(fakeDocuments{"assign.py": assignmentTree()}, nil, nil, nil)
	assert.Equal(t, UnknownType, resolver.Resolve(ctx, "assign.py", 0))

	resolver = NewResolver(nil, nil, nil, nil)
	assert.Equal(t, NoPSI, resolver.Resolve(ctx, "assign.py", 0))
}

func TestOnCaretMoved(t *testing.T) {
	inferrer := &fakeInferrer{types: map[string]string{"x": "int"}}
	resolver := newTestResolver(inferrer)
	ctx := context.Background()

	assert.Equal(t, NoElement, resolver.Text())

	resolver.OnCaretMoved(ctx, "assign.py", 0)
	assert.Equal(t, "Type: int", resolver.Text())

	resolver.OnCaretMoved(ctx, "assign.py", 0)
	assert.Equal(t, "Type: int", resolver.Text(), "same position resolves identically")

	resolver.OnCaretMoved(ctx, "assign.py", 2)
	assert.Equal(t, NotAVariable, resolver.Text())

	resolver.OnCaretMoved(ctx, "notes.txt", 0)
	assert.Equal(t, NoPSI, resolver.Text())
}

func TestOnCaretMovedRepaintIsDeferred(t *testing.T) {
	dispatcher := &queueDispatcher{}
	repaints := 0
	resolver := NewResolver(fakeDocuments{"assign.py": assignmentTree()},
		&fakeInferrer{types: map[string]string{"x": "int"}}, dispatcher, func() { repaints++ })

	resolver.OnCaretMoved(context.Background(), "assign.py", 0)
	resolver.OnCaretMoved(context.Background(), "assign.py", 2)
	assert.Equal(t, 0, repaints)
	assert.Equal(t, NotAVariable, resolver.Text())

	assert.Equal(t, 2, dispatcher.flush())
	assert.Equal(t, 2, repaints)
}

func TestOnCaretMovedLastWriteWins(t *testing.T) {
	release := make(chan struct{})
	inferrer := &fakeInferrer{
		types:   map[string]string{"x": "int", "y": "str"},
		block:   map[string]chan struct{}{"x": release},
		entered: make(chan string, 2),
	}
	resolver := NewResolver(fakeDocuments{
		"assign.py":    assignmentTree(),
		"reference.py": referenceTree(),
	}, inferrer, Immediate, nil)
	ctx := context.Background()

	// A starts first and stalls inside the engine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		resolver.OnCaretMoved(ctx, "assign.py", 0)
	}()
	require.Equal(t, "x", <-inferrer.entered)

	// B starts later and finishes first.
	resolver.OnCaretMoved(ctx, "reference.py", 0)
	require.Equal(t, "y", <-inferrer.entered)
	assert.Equal(t, "Type: str", resolver.Text())

	close(release)
	<-done
	assert.Equal(t, "Type: str", resolver.Text(), "stale resolution must not overwrite")
}

func TestFindEnclosing(t *testing.T) {
	tree := attributeTree()
	leaf := tree.NodeAt(2).(*fakeNode)
	require.Equal(t, "b", leaf.name)

	found := FindEnclosing(leaf, KindReference, KindAssignmentTarget)
	require.NotNil(t, found)
	assert.Equal(t, "a.b", found.(*fakeNode).name)

	inner := FindEnclosing(tree.NodeAt(0), KindReference, KindAssignmentTarget)
	assert.Equal(t, "a", inner.(*fakeNode).name)

	assert.Nil(t, FindEnclosing(tree.NodeAt(4), KindReference, KindAssignmentTarget))
	assert.Nil(t, FindEnclosing(nil, KindReference))
}

func TestTypeText(t *testing.T) {
	assert.Equal(t, "Type: dict[str, int]", TypeText("dict[str, int]"))
	assert.Equal(t, UnknownType, TypeText(""))
}

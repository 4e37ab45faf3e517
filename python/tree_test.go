package python

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tminor/lspytype/widget"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return tree
}

func TestParse(t *testing.T) {
	tree := parse(t, "x = 1\n")
	require.NotNil(t, tree.Root)
	assert.Equal(t, "module", tree.Root.Type)
	assert.Equal(t, "x = 1\n", string(tree.Source()))
	assert.Nil(t, tree.Root.Parent())

	leaf := tree.Find(0)
	require.NotNil(t, leaf)
	assert.Equal(t, "identifier", leaf.Type)
	assert.Equal(t, "left", leaf.Field)
	assert.Equal(t, "x", leaf.Text())
	begin, end := leaf.Range()
	assert.Equal(t, 0, begin)
	assert.Equal(t, 1, end)

	assignment := leaf.Ancestor("assignment")
	require.NotNil(t, assignment)
	assert.Equal(t, "1", assignment.Child("right").Text())
	assert.Equal(t, assignment, leaf.Up())

	operator := tree.Find(2)
	require.NotNil(t, operator)
	assert.Equal(t, "=", operator.Type)
	assert.False(t, operator.Named)
}

func TestParseEmpty(t *testing.T) {
	tree := parse(t, "")
	assert.Nil(t, tree.Find(0))
	assert.Nil(t, tree.NodeAt(0), "NodeAt must return an untyped nil")
}

func TestParseSyntaxErrors(t *testing.T) {
	tree := parse(t, "x = (\ny = 2\n")
	assert.True(t, tree.Root.hasError())

	var found bool
	Inspect(tree.Root, func(node *Node) bool {
		if node.Type == "identifier" && node.Text() == "x" {
			found = true
		}
		return true
	})
	assert.True(t, found, "partial trees keep the nodes that did parse")
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, []byte("x = 1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKind(t *testing.T) {
	tests := []struct {
		src    string
		offset int
		want   widget.Kind
	}{
		{"x = 1", 0, widget.KindAssignmentTarget},
		{"x = 1", 2, widget.KindOther},
		{"x = 1", 4, widget.KindOther},
		{"y", 0, widget.KindReference},
		{"x = y", 4, widget.KindReference},
		{"def f(a): pass", 4, widget.KindOther},
		{"def f(a): pass", 6, widget.KindOther},
		{"def f(a=1): pass", 6, widget.KindOther},
		{"def f(*args): pass", 7, widget.KindOther},
		{"lambda a: a", 7, widget.KindOther},
		{"lambda a: a", 10, widget.KindReference},
		{"class C: pass", 6, widget.KindOther},
		{"f(x=1)", 0, widget.KindReference},
		{"f(x=1)", 2, widget.KindOther},
		{"import os", 7, widget.KindOther},
		{"from os import path", 15, widget.KindOther},
		{"a.b = 1", 0, widget.KindReference},
		{"a.b = 1", 2, widget.KindOther},
		{"for i in xs: pass", 4, widget.KindAssignmentTarget},
		{"for i in xs: pass", 9, widget.KindReference},
		{"a, b = 1, 2", 3, widget.KindAssignmentTarget},
		{"[a, b] = 1, 2", 4, widget.KindAssignmentTarget},
		{"x += 1", 0, widget.KindAssignmentTarget},
		{"(n := 1)", 1, widget.KindAssignmentTarget},
		{"global g", 7, widget.KindOther},
		{"[i for i in xs]", 1, widget.KindReference},
		{"[i for i in xs]", 7, widget.KindAssignmentTarget},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s@%d", test.src, test.offset), func(t *testing.T) {
			leaf := parse(t, test.src).Find(test.offset)
			require.NotNil(t, leaf)
			assert.Equal(t, test.want, leaf.Kind())
		})
	}
}

func TestAttributeKind(t *testing.T) {
	tree := parse(t, "a.b = c.d")

	target := tree.Find(2).Up()
	require.Equal(t, "attribute", target.Type)
	assert.Equal(t, widget.KindAssignmentTarget, target.Kind())

	reference := tree.Find(8).Up()
	require.Equal(t, "attribute", reference.Type)
	assert.Equal(t, widget.KindReference, reference.Kind())
}

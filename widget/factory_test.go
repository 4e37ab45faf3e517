package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactory(t *testing.T) {
	factory := NewFactory()
	assert.True(t, factory.IsAvailable())
	assert.Equal(t, WidgetID, factory.ID())
	assert.Equal(t, WidgetDisplayName, factory.DisplayName())
}

func TestWidgetLifecycle(t *testing.T) {
	carets := &fakeCarets{}
	statusBar := &fakeStatusBar{}
	dispatcher := &queueDispatcher{}
	factory := NewFactory()

	widget := factory.Create(Host{
		Documents:  fakeDocuments{"assign.py": assignmentTree()},
		Inferrer:   &fakeInferrer{types: map[string]string{"x": "int"}},
		Carets:     carets,
		StatusBar:  statusBar,
		Dispatcher: dispatcher,
	})
	assert.Equal(t, 1, carets.count())
	assert.Equal(t, WidgetID, widget.ID())
	assert.Equal(t, WidgetTooltip, widget.Tooltip())
	assert.Equal(t, AlignCenter, widget.Alignment())
	assert.Nil(t, widget.ClickConsumer())
	assert.Equal(t, NoElement, widget.Text())

	carets.move("assign.py", 0)
	assert.Equal(t, "Type: int", widget.Text())
	assert.Empty(t, statusBar.updates, "repaint waits for the UI queue")
	dispatcher.flush()
	assert.Equal(t, []string{WidgetID}, statusBar.updates)

	carets.move("assign.py", 2)
	dispatcher.flush()
	assert.Equal(t, NotAVariable, widget.Text())
	assert.Len(t, statusBar.updates, 2)

	factory.Dispose(widget)
	assert.Equal(t, 0, carets.count())
	carets.move("assign.py", 0)
	assert.Equal(t, NotAVariable, widget.Text(), "disposed widget ignores caret events")

	// Disposing twice is harmless.
	widget.Dispose()
	factory.Dispose(nil)
}

func TestWidgetWithoutCollaborators(t *testing.T) {
	widget := NewFactory().Create(Host{})
	widget.CaretPositionChanged(context.TODO(), CaretEvent{Document: "a.py", Offset: 0})
	assert.Equal(t, NoPSI, widget.Text())
	widget.Dispose()
}
